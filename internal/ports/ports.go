package ports

import (
	"context"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

// ContentSource resolves a reference (URL or local path) into an article.
type ContentSource interface {
	Fetch(ctx context.Context, ref string) (types.Article, error)
}

// Transformer rewrites narration scripts with a language model.
type Transformer interface {
	Summarize(ctx context.Context, script string, maxWords int) (string, error)
	Translate(ctx context.Context, script, language string) (string, error)
	Highlights(ctx context.Context, script string, n int) ([]string, error)
	Merge(ctx context.Context, scripts []string) (string, error)
}

// SpeechEngine renders utterances to audio and reports playback events on
// Events. An engine serves one consumer at a time.
type SpeechEngine interface {
	Speak(ctx context.Context, u types.Utterance) error
	Cancel() error
	Events() <-chan types.SpeechEvent
	Close() error
}
