package playback

import (
	"context"
	"strings"
)

// Payload is resolved playable content: a spoken lead-in followed by either
// a file of pre-rendered audio or more text.
type Payload struct {
	LeadIn    string
	Text      string
	FilePath  string
	Title     string
	Temporary bool
}

func (p Payload) Validate() error {
	if strings.TrimSpace(p.LeadIn) == "" && strings.TrimSpace(p.Text) == "" && p.FilePath == "" {
		return InvalidPayload("payload has nothing to play")
	}
	if p.Text != "" && p.FilePath != "" {
		return InvalidPayload("payload cannot carry both text and a file")
	}
	return nil
}

func (p Payload) Ready() (Payload, bool) {
	return p, true
}

func (p Payload) Resolve(context.Context) (Payload, error) {
	return p, nil
}

// Source produces a Payload. Sources that need no remote work report it
// through Ready so the utterance can be queued before play returns.
type Source interface {
	Ready() (Payload, bool)
	Resolve(ctx context.Context) (Payload, error)
}

// SourceFunc adapts a resolution function that always needs remote work.
type SourceFunc func(ctx context.Context) (Payload, error)

func (f SourceFunc) Ready() (Payload, bool) {
	return Payload{}, false
}

func (f SourceFunc) Resolve(ctx context.Context) (Payload, error) {
	return f(ctx)
}
