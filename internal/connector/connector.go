// Package connector talks to the bot channel's REST surface: posting reply
// activities back into conversations and obtaining the bot's bearer tokens.
package connector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bitbucket.org/ymatsuda/speech-skill/internal/models"
	"github.com/go-resty/resty/v2"
)

// TokenProvider supplies the bot's bearer token for outbound channel calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client posts activities to the service URL carried by the conversation.
type Client struct {
	client *resty.Client
	tokens TokenProvider
}

func NewClient(tokens TokenProvider) *Client {
	return &Client{
		client: resty.New(),
		tokens: tokens,
	}
}

// ReplyToActivity sends the reply into the conversation it was created for,
// correlated to the activity it answers.
func (c *Client) ReplyToActivity(ctx context.Context, reply *models.Activity) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("obtain token: %w", err)
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reply)
	if token != "" {
		req.SetAuthToken(token)
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities/%s",
		strings.TrimRight(reply.ServiceURL, "/"),
		url.PathEscape(reply.Conversation.ID),
		url.PathEscape(reply.ReplyToID),
	)

	resp, err := req.Post(endpoint)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send reply: unexpected status %d: %s", resp.StatusCode(), resp.Body())
	}

	return nil
}
