// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/stt"
)

// Provider is a mock implementation of stt.Provider.
//
// Transcripts are returned in order, one per Transcribe call; when the list is
// exhausted the last entry repeats. Set Err to inject a failure on every call.
type Provider struct {
	mu sync.Mutex

	// Transcripts is the sequence of results to return.
	Transcripts []stt.Transcript

	// Err, if non-nil, is returned from every Transcribe call.
	Err error

	// Audio records the payload of every Transcribe call in order.
	Audio [][]byte

	next int
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, wavData []byte) (stt.Transcript, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := make([]byte, len(wavData))
	copy(cp, wavData)
	p.Audio = append(p.Audio, cp)

	if p.Err != nil {
		return stt.Transcript{}, p.Err
	}
	if len(p.Transcripts) == 0 {
		return stt.Transcript{}, nil
	}
	idx := p.next
	if idx >= len(p.Transcripts) {
		idx = len(p.Transcripts) - 1
	} else {
		p.next++
	}
	return p.Transcripts[idx], nil
}
