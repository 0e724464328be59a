// Package mock provides test doubles for the audio.Player and audio.Capturer
// interfaces.
package mock

import (
	"context"
	"sync"
	"time"
)

// PlayEvent records one playback invocation, in order, with its wall-clock
// time so tests can assert ordering against other side effects.
type PlayEvent struct {
	// Clip is the clip name for PlayClip calls; empty for PlayBytes calls.
	Clip string

	// Bytes is the payload for PlayBytes calls; nil for PlayClip calls.
	Bytes []byte

	// At is when the call was made.
	At time.Time
}

// Player is a mock implementation of audio.Player that records every call.
// Set ClipErr or BytesErr to inject failures.
type Player struct {
	mu sync.Mutex

	// ClipErr, if non-nil, is returned from every PlayClip call.
	ClipErr error

	// BytesErr, if non-nil, is returned from every PlayBytes call.
	BytesErr error

	// Events records every playback in order.
	Events []PlayEvent
}

// PlayClip implements audio.Player.
func (p *Player) PlayClip(ctx context.Context, name string) error {
	p.mu.Lock()
	p.Events = append(p.Events, PlayEvent{Clip: name, At: time.Now()})
	p.mu.Unlock()
	return p.ClipErr
}

// PlayBytes implements audio.Player.
func (p *Player) PlayBytes(ctx context.Context, wavData []byte) error {
	p.mu.Lock()
	cp := make([]byte, len(wavData))
	copy(cp, wavData)
	p.Events = append(p.Events, PlayEvent{Bytes: cp, At: time.Now()})
	p.mu.Unlock()
	return p.BytesErr
}

// Played returns a snapshot of recorded playback events.
func (p *Player) Played() []PlayEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PlayEvent, len(p.Events))
	copy(out, p.Events)
	return out
}

// Capturer is a mock implementation of audio.Capturer that returns canned
// utterances in order. When the list is exhausted, Capture blocks until ctx
// is cancelled — mirroring a real microphone with no further speech.
type Capturer struct {
	mu sync.Mutex

	// Utterances is the sequence of WAV payloads to return.
	Utterances [][]byte

	// Err, if non-nil, is returned from every Capture call.
	Err error

	next   int
	closed bool
}

// Capture implements audio.Capturer.
func (c *Capturer) Capture(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if c.Err != nil {
		err := c.Err
		c.mu.Unlock()
		return nil, err
	}
	if c.next < len(c.Utterances) {
		u := c.Utterances[c.next]
		c.next++
		c.mu.Unlock()
		return u, nil
	}
	c.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

// Close implements audio.Capturer.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Capturer) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
