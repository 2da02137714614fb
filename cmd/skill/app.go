package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"bitbucket.org/ymatsuda/speech-skill/internal/bot"
	"bitbucket.org/ymatsuda/speech-skill/internal/logger"
	"bitbucket.org/ymatsuda/speech-skill/internal/models"
	"go.uber.org/zap"
)

type app struct {
	router *bot.Router
	secret string
}

func newApp(router *bot.Router, secret string) *app {
	return &app{router: router, secret: secret}
}

func (a *app) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		logger.Log.Debug("got request with bad method", zap.String("method", r.Method))

		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Log.Debug("cannot read request body", zap.Error(err))

		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if a.secret != "" {
		if !verifySignature(body, a.secret, r.Header.Get("X-Signature-256")) {
			logger.Log.Debug("rejected request with bad signature")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	logger.Log.Debug("decoding activity")
	var activity models.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))

		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if activity.Type == "" {
		logger.Log.Debug("activity without type")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	if err := a.router.Handle(ctx, &activity); err != nil {
		logger.Log.Error("activity handling failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	logger.Log.Debug("sending HTTP 200 response")
}

// verifySignature checks the HMAC-SHA256 signature of the body.
func verifySignature(body []byte, secret, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
