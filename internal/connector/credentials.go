package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTokenURL is the channel framework's OAuth client-credentials endpoint.
const DefaultTokenURL = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"

const tokenScope = "https://api.botframework.com/.default"

// Tokens are refreshed this long before their reported expiry.
const expirySlack = 60 * time.Second

// AppCredentials issues and caches the bot's bearer token. One instance is
// shared by every request, so the cache is mutex-guarded. An empty app id
// selects anonymous mode (local emulators): Token returns "" and outbound
// calls go unauthenticated.
type AppCredentials struct {
	client      *resty.Client
	tokenURL    string
	appID       string
	appPassword string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewAppCredentials(appID, appPassword, tokenURL string) *AppCredentials {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &AppCredentials{
		client:      resty.New(),
		tokenURL:    tokenURL,
		appID:       appID,
		appPassword: appPassword,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *AppCredentials) Token(ctx context.Context) (string, error) {
	if c.appID == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	var tr tokenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.appID,
			"client_secret": c.appPassword,
			"scope":         tokenScope,
		}).
		SetResult(&tr).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("request token: unexpected status %d", resp.StatusCode())
	}
	if tr.AccessToken == "" {
		return "", errors.New("request token: empty access_token in response")
	}

	c.token = tr.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - expirySlack)

	return c.token, nil
}
