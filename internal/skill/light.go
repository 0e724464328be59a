package skill

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/internal/broker"
	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
)

// Compile-time assertion that Light implements Skill.
var _ Skill = (*Light)(nil)

// publishDelay separates the start of the confirmation clip from the broker
// publish so the spoken acknowledgement begins before the light physically
// switches. Must stay non-zero.
const publishDelay = time.Second

// Light toggles the smart light: it plays a random confirmation clip, waits,
// then publishes the action verbatim to the broker topic.
type Light struct {
	player    audio.Player
	publisher broker.Publisher
	pick      func(n int) int
	delay     time.Duration
	logger    *slog.Logger
}

// LightOption configures a [Light].
type LightOption func(*Light)

// WithLightPick overrides the random clip-variant selection. pick(n) must
// return a value in [0, n).
func WithLightPick(pick func(n int) int) LightOption {
	return func(l *Light) {
		l.pick = pick
	}
}

// WithLightDelay overrides the clip-to-publish delay. Tests shorten it; it
// must stay positive.
func WithLightDelay(delay time.Duration) LightOption {
	return func(l *Light) {
		l.delay = delay
	}
}

// WithLightLogger sets the logger. Defaults to slog.Default().
func WithLightLogger(logger *slog.Logger) LightOption {
	return func(l *Light) {
		l.logger = logger
	}
}

// NewLight creates the light-control skill.
func NewLight(player audio.Player, publisher broker.Publisher, opts ...LightOption) *Light {
	l := &Light{
		player:    player,
		publisher: publisher,
		pick:      rand.IntN,
		delay:     publishDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Execute implements Skill. An action outside {ON, OFF} is logged and
// ignored: no playback, no publish, no error.
func (l *Light) Execute(ctx context.Context, decision intent.Decision) (Result, error) {
	action, ok := decision.StringParam("action")
	if !ok || (action != "ON" && action != "OFF") {
		l.logger.Warn("light skill got unusable action, ignoring",
			"action", action,
			"parameters", decision.Parameters)
		return Result{}, nil
	}

	clip := audio.LightClip(strings.ToLower(action), l.pick(audio.LightVariants)+1)
	if err := l.player.PlayClip(ctx, clip); err != nil {
		return Result{}, err
	}

	select {
	case <-time.After(l.delay):
	case <-ctx.Done():
		return Result{PlayedClip: clip}, ctx.Err()
	}

	if err := l.publisher.Publish(ctx, action); err != nil {
		return Result{PlayedClip: clip}, err
	}

	l.logger.Info("light command published", "action", action, "clip", clip)
	return Result{PlayedClip: clip, Published: action}, nil
}
