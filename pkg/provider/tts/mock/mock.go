// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/tts"
)

// Provider is a mock implementation of tts.Provider.
// Zero value returns empty audio and nil errors. Set Err to inject failures.
type Provider struct {
	mu sync.Mutex

	// Audio is the clip returned from every Synthesize call.
	Audio []byte

	// Err, if non-nil, is returned from every Synthesize call.
	Err error

	// Texts records the text of every Synthesize call in order.
	Texts []string
}

var _ tts.Provider = (*Provider)(nil)

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	p.Texts = append(p.Texts, text)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Audio, nil
}

// Spoken returns a snapshot of all synthesised texts.
func (p *Provider) Spoken() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Texts))
	copy(out, p.Texts)
	return out
}
