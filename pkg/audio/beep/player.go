// Package beep implements audio.Player on top of github.com/faiface/beep,
// playing WAV clips through the default output device.
//
// The speaker is initialised once, at the sample rate of the first clip
// played; later clips at other rates are resampled on the fly.
package beep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	beeplib "github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
)

// Compile-time assertion that Player implements audio.Player.
var _ audio.Player = (*Player)(nil)

// Player plays WAV audio through the system speaker.
// Safe for concurrent use; playback calls are serialised internally so clips
// never overlap.
type Player struct {
	library *audio.Library

	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
	rate     beeplib.SampleRate
}

// NewPlayer creates a Player that resolves named clips through library.
func NewPlayer(library *audio.Library) *Player {
	return &Player{library: library}
}

// PlayClip implements audio.Player.
func (p *Player) PlayClip(ctx context.Context, name string) error {
	data, err := p.library.Load(name)
	if err != nil {
		return err
	}
	return p.PlayBytes(ctx, data)
}

// PlayBytes implements audio.Player.
func (p *Player) PlayBytes(ctx context.Context, wavData []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(wavData)))
	if err != nil {
		return fmt.Errorf("beep: decode wav: %w", err)
	}
	defer streamer.Close()

	p.initOnce.Do(func() {
		p.rate = format.SampleRate
		p.initErr = speaker.Init(p.rate, p.rate.N(time.Second/10))
	})
	if p.initErr != nil {
		return fmt.Errorf("beep: init speaker: %w", p.initErr)
	}

	var stream beeplib.Streamer = streamer
	if format.SampleRate != p.rate {
		stream = beeplib.Resample(4, format.SampleRate, p.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beeplib.Seq(stream, beeplib.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
