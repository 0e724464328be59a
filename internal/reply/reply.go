// Package reply speaks assistant messages, masking text-to-speech latency
// behind a canned filler clip when the message is long.
//
// The policy is a single threshold: messages over 40 characters take long
// enough to synthesise that the pause reads as a hang, so a random
// "thinking" filler plays first. Short messages are spoken directly. The
// threshold counts characters, not bytes — Chinese replies hit it at the
// same spoken length as English ones.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/DuoDuoJuZi/Myurujisu/internal/observe"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/tts"
)

// fillerThreshold is the character count above which a filler clip precedes
// the spoken reply.
const fillerThreshold = 40

// Player delivers spoken replies through the TTS provider and the audio
// output.
type Player struct {
	tts     tts.Provider
	out     audio.Player
	pick    func(n int) int
	metrics *observe.Metrics
	logger  *slog.Logger
}

// Option configures a [Player].
type Option func(*Player)

// WithPick overrides the random filler selection. pick(n) must return a
// value in [0, n). Tests use this for determinism.
func WithPick(pick func(n int) int) Option {
	return func(p *Player) {
		p.pick = pick
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Player) {
		p.metrics = m
	}
}

// NewPlayer creates a reply player.
func NewPlayer(ttsProvider tts.Provider, out audio.Player, opts ...Option) *Player {
	p := &Player{
		tts:    ttsProvider,
		out:    out,
		pick:   rand.IntN,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Deliver speaks message, preceded by a random filler clip when the message
// exceeds the latency threshold. An empty message is a no-op.
func (p *Player) Deliver(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}

	if utf8.RuneCountInString(message) > fillerThreshold {
		clip := audio.FillerClip(p.pick(audio.FillerVariants) + 1)
		p.logger.Debug("playing filler before long reply",
			"clip", clip,
			"message_chars", utf8.RuneCountInString(message))
		if err := p.out.PlayClip(ctx, clip); err != nil {
			return fmt.Errorf("reply: play filler %q: %w", clip, err)
		}
	}

	return p.Say(ctx, message)
}

// Say synthesises and speaks message directly, with no filler regardless of
// length. The fallback skill uses this path.
func (p *Player) Say(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}

	start := time.Now()
	wav, err := p.tts.Synthesize(ctx, message)
	p.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("reply: synthesize: %w", err)
	}
	if err := p.out.PlayBytes(ctx, wav); err != nil {
		return fmt.Errorf("reply: play reply: %w", err)
	}
	return nil
}
