// Package bot routes inbound activities: message activities run the
// fetch → transcribe → analyze pipeline and always answer; system activities
// are dispatched by type and usually stay silent.
package bot

import (
	"context"
	"io"

	"bitbucket.org/ymatsuda/speech-skill/internal/analyze"
	"bitbucket.org/ymatsuda/speech-skill/internal/logger"
	"bitbucket.org/ymatsuda/speech-skill/internal/models"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/mock.go -package=mock bitbucket.org/ymatsuda/speech-skill/internal/bot Fetcher,Transcriber,Emitter

// Fetcher resolves an attachment reference to its content stream.
type Fetcher interface {
	Fetch(ctx context.Context, att models.Attachment) (io.ReadCloser, error)
}

// Transcriber converts an audio stream to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Emitter sends a reply activity back into its conversation.
type Emitter interface {
	ReplyToActivity(ctx context.Context, reply *models.Activity) error
}

// Fixed user-visible replies.
const (
	PromptUpload = "音声ファイルをアップロードしましたか？私は音に反応するので、WAVファイルを送ってみて下さい！"
	ReplyApology = "あれ、何か問題が起きちゃった。もう一度あとで試してみて！"
	Greeting     = "こんにちは！僕は音声をテキスト化するBOTだよ。音声ファイルを送ってくれたら、テキスト化できるだ。WAV形式のファイルを送ってみてね。"
)

type Router struct {
	fetcher Fetcher
	speech  Transcriber
	emitter Emitter
}

func NewRouter(fetcher Fetcher, speech Transcriber, emitter Emitter) *Router {
	return &Router{
		fetcher: fetcher,
		speech:  speech,
		emitter: emitter,
	}
}

// Handle processes one inbound activity, emitting zero or one reply.
func (r *Router) Handle(ctx context.Context, activity *models.Activity) error {
	if activity.Type == models.TypeMessage {
		return r.handleMessage(ctx, activity)
	}
	return r.handleSystem(ctx, activity)
}

// handleMessage always answers. Pipeline failures are collapsed into the
// fixed apology and never reach the user; only the emission itself can fail.
func (r *Router) handleMessage(ctx context.Context, activity *models.Activity) error {
	var message string

	if att := audioAttachment(activity.Attachments); att != nil {
		text, err := r.runPipeline(ctx, activity.Text, *att)
		if err != nil {
			logger.Log.Debug("message pipeline failed", zap.Error(err))
			message = ReplyApology
		} else {
			message = text
		}
	} else {
		message = PromptUpload
	}

	return r.emitter.ReplyToActivity(ctx, activity.CreateReply(message))
}

func (r *Router) runPipeline(ctx context.Context, command string, att models.Attachment) (string, error) {
	stream, err := r.fetcher.Fetch(ctx, att)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	transcript, err := r.speech.Transcribe(ctx, stream)
	if err != nil {
		return "", err
	}

	return analyze.Process(command, transcript), nil
}

// audioAttachment returns the first attachment carrying audio content.
// Content types are matched exactly, so order matters.
func audioAttachment(atts []models.Attachment) *models.Attachment {
	for i, a := range atts {
		if a.ContentType == "audio/wav" || a.ContentType == "application/octet-stream" {
			return &atts[i]
		}
	}
	return nil
}

// handleSystem dispatches non-message activities. Unlike the message path,
// emission failures here propagate to the caller.
func (r *Router) handleSystem(ctx context.Context, activity *models.Activity) error {
	switch activity.Type {
	case models.TypeConversationUpdate:
		// Greet the conversation the first time the bot itself is added.
		for _, m := range activity.MembersAdded {
			if m.ID == activity.Recipient.ID {
				return r.emitter.ReplyToActivity(ctx, activity.CreateReply(Greeting))
			}
		}
	case models.TypeDeleteUserData:
		// reserved
	case models.TypeContactRelationUpdate:
		// reserved
	case models.TypeTyping:
		// reserved
	case models.TypePing:
		// reserved
	}
	return nil
}
