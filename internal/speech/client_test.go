package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"RecognitionStatus":"Success","DisplayText":"hello world"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key")

	text, err := c.Transcribe(context.Background(), strings.NewReader("RIFFaudio"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", text)
	assert.Equal(t, "audio/wav", gotContentType)
	assert.Equal(t, "Bearer api-key", gotAuth)
	assert.Equal(t, "RIFFaudio", string(gotBody))
}

func TestTranscribeLowercaseTextField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"from whisper"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")

	text, err := c.Transcribe(context.Background(), strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Equal(t, "from whisper", text)
}

func TestTranscribeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unsupported format"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key")

	_, err := c.Transcribe(context.Background(), strings.NewReader("not audio"))
	require.Error(t, err)

	var speechErr *Error
	require.ErrorAs(t, err, &speechErr)
	assert.Equal(t, http.StatusBadRequest, speechErr.StatusCode)
	assert.Contains(t, speechErr.Body, "unsupported format")
}

func TestTranscribeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key")

	_, err := c.Transcribe(context.Background(), strings.NewReader("audio"))

	var speechErr *Error
	require.ErrorAs(t, err, &speechErr)
}
