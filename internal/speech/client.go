package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Client sends WAV audio to the recognition endpoint in a single POST and
// returns the recognized text. There is no retry: one failed attempt
// propagates to the caller.
type Client struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		client:   resty.New(),
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type recognitionResponse struct {
	DisplayText       string `json:"DisplayText"`
	Text              string `json:"text"`
	RecognitionStatus string `json:"RecognitionStatus"`
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "audio/wav").
		SetAuthToken(c.apiKey).
		SetBody(audio).
		Post(c.endpoint)
	if err != nil {
		return "", &Error{Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var rec recognitionResponse
	if err := json.Unmarshal(resp.Body(), &rec); err != nil {
		return "", &Error{Err: fmt.Errorf("decode recognition response: %w", err)}
	}

	if rec.DisplayText != "" {
		return rec.DisplayText, nil
	}
	return rec.Text, nil
}
