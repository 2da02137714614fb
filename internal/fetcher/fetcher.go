// Package fetcher retrieves attachment content referenced by inbound
// activities. Attachments hosted on the trusted media host require a
// bot-issued bearer token; everything else is fetched unauthenticated.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"bitbucket.org/ymatsuda/speech-skill/internal/models"
	"github.com/go-resty/resty/v2"
)

// DefaultTrustedSuffix is the host suffix whose attachment URLs are secured
// by bot JWT tokens.
const DefaultTrustedSuffix = "skype.com"

// Error describes a failed attachment retrieval.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch attachment %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch attachment %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// TokenProvider supplies the bearer token used for trusted-host downloads.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type Fetcher struct {
	client        *resty.Client
	tokens        TokenProvider
	trustedSuffix string
}

// New builds a Fetcher. An empty trustedSuffix selects DefaultTrustedSuffix.
func New(tokens TokenProvider, trustedSuffix string) *Fetcher {
	if trustedSuffix == "" {
		trustedSuffix = DefaultTrustedSuffix
	}
	return &Fetcher{
		client:        resty.New().SetDoNotParseResponse(true),
		tokens:        tokens,
		trustedSuffix: trustedSuffix,
	}
}

// NeedsBearer reports whether an attachment URL requires bot-issued
// authorization: the host ends with the trusted suffix and the transport is
// TLS. Suffix comparison is case-insensitive.
func NeedsBearer(u *url.URL, trustedSuffix string) bool {
	return strings.HasSuffix(strings.ToLower(u.Hostname()), strings.ToLower(trustedSuffix)) &&
		u.Scheme == "https"
}

// Fetch resolves the attachment content as a stream. The caller owns the
// returned ReadCloser.
func (f *Fetcher) Fetch(ctx context.Context, att models.Attachment) (io.ReadCloser, error) {
	u, err := url.Parse(att.ContentURL)
	if err != nil {
		return nil, &Error{URL: att.ContentURL, Err: err}
	}

	req := f.client.R().SetContext(ctx)
	if NeedsBearer(u, f.trustedSuffix) {
		token, err := f.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{URL: att.ContentURL, Err: fmt.Errorf("obtain token: %w", err)}
		}
		req.SetAuthToken(token)
		req.SetHeader("Accept", "application/octet-stream")
	} else {
		req.SetHeader("Accept", att.ContentType)
	}

	resp, err := req.Get(u.String())
	if err != nil {
		return nil, &Error{URL: att.ContentURL, Err: err}
	}

	if resp.IsError() {
		resp.RawBody().Close()
		return nil, &Error{URL: att.ContentURL, StatusCode: resp.StatusCode()}
	}

	return resp.RawBody(), nil
}
