// Package mock provides a test double for the broker.Publisher interface.
package mock

import (
	"context"
	"sync"
	"time"
)

// Publish records one Publish invocation with its wall-clock time so tests
// can assert ordering against playback side effects.
type Publish struct {
	Payload string
	At      time.Time
}

// Publisher is a mock implementation of broker.Publisher that records every
// payload. Set Err to inject failures.
type Publisher struct {
	mu sync.Mutex

	// Err, if non-nil, is returned from every Publish call.
	Err error

	// Publishes records every call in order.
	Publishes []Publish
}

// Publish implements broker.Publisher.
func (p *Publisher) Publish(ctx context.Context, payload string) error {
	p.mu.Lock()
	p.Publishes = append(p.Publishes, Publish{Payload: payload, At: time.Now()})
	p.mu.Unlock()
	return p.Err
}

// Published returns a snapshot of recorded publishes.
func (p *Publisher) Published() []Publish {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Publish, len(p.Publishes))
	copy(out, p.Publishes)
	return out
}
