package connector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"bitbucket.org/ymatsuda/speech-skill/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

func TestReplyToActivity(t *testing.T) {
	var gotPath, gotAuth string
	var gotActivity models.Activity
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotActivity))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inbound := &models.Activity{
		Type:         models.TypeMessage,
		ID:           "act-1",
		ServiceURL:   srv.URL,
		Conversation: models.ConversationAccount{ID: "conv-1"},
		From:         models.ChannelAccount{ID: "user"},
		Recipient:    models.ChannelAccount{ID: "bot"},
	}

	c := NewClient(staticToken("tok"))
	err := c.ReplyToActivity(context.Background(), inbound.CreateReply("hi there"))
	require.NoError(t, err)

	assert.Equal(t, "/v3/conversations/conv-1/activities/act-1", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "hi there", gotActivity.Text)
	assert.Equal(t, "bot", gotActivity.From.ID, "reply must come from the bot")
	assert.Equal(t, "user", gotActivity.Recipient.ID)
}

func TestReplyToActivityAnonymous(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	reply := &models.Activity{
		ServiceURL:   srv.URL,
		Conversation: models.ConversationAccount{ID: "c"},
		ReplyToID:    "a",
	}

	c := NewClient(staticToken(""))
	require.NoError(t, c.ReplyToActivity(context.Background(), reply))
	assert.Empty(t, gotAuth)
}

func TestReplyToActivityErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	reply := &models.Activity{
		ServiceURL:   srv.URL,
		Conversation: models.ConversationAccount{ID: "c"},
		ReplyToID:    "a",
	}

	c := NewClient(staticToken("tok"))
	assert.Error(t, c.ReplyToActivity(context.Background(), reply))
}

func TestAppCredentialsCaching(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "app-id", r.Form.Get("client_id"))
		assert.Equal(t, "app-secret", r.Form.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued-token","expires_in":3600}`))
	}))
	defer srv.Close()

	c := NewAppCredentials("app-id", "app-secret", srv.URL)

	for i := 0; i < 3; i++ {
		token, err := c.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "issued-token", token)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "token must be cached until expiry")
}

func TestAppCredentialsExpiredTokenRefreshed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		// expires_in below the refresh slack, so the cached token is
		// already stale on the next call
		_, _ = w.Write([]byte(`{"access_token":"short-lived","expires_in":1}`))
	}))
	defer srv.Close()

	c := NewAppCredentials("app-id", "app-secret", srv.URL)

	_, err := c.Token(context.Background())
	require.NoError(t, err)
	_, err = c.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAppCredentialsAnonymous(t *testing.T) {
	c := NewAppCredentials("", "", "")

	token, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAppCredentialsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAppCredentials("app-id", "bad-secret", srv.URL)

	_, err := c.Token(context.Background())
	assert.Error(t, err)
}
