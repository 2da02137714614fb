// Package speech defines the transcription contract and an HTTP client for
// the external speech-recognition service.
package speech

import (
	"context"
	"fmt"
	"io"
)

// Transcriber converts an audio stream to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Error describes a failed transcription attempt.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcribe audio: %v", e.Err)
	}
	return fmt.Sprintf("transcribe audio: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }
