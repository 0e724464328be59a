// Package app drives the continuous listen-transcribe-decide-act loop.
//
// Each iteration moves one utterance through a fixed state sequence:
//
//	Idle → Capturing → Transcribing → Spotting → {Idle | Classifying} → Dispatching → Idle
//
// Every stage consumes the previous stage's output exclusively; nothing
// carries over between iterations. A single failure boundary wraps the whole
// sequence: any stage error is logged, counted, and the loop returns to Idle
// for the next utterance.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
	"github.com/DuoDuoJuZi/Myurujisu/internal/observe"
	"github.com/DuoDuoJuZi/Myurujisu/internal/skill"
	"github.com/DuoDuoJuZi/Myurujisu/internal/transcript"
	"github.com/DuoDuoJuZi/Myurujisu/internal/wake"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/stt"
)

// Stage names the pipeline state an utterance is in. Used in logs, stage
// errors, and metrics attributes.
type Stage string

const (
	StageCapture    Stage = "capture"
	StageTranscribe Stage = "transcribe"
	StageSpot       Stage = "spot"
	StageClassify   Stage = "classify"
	StageDispatch   Stage = "dispatch"
)

// Classifier is the intent-classification boundary the pipeline depends on.
// [intent.Classifier] satisfies it.
type Classifier interface {
	Classify(ctx context.Context, command string) (intent.Decision, error)
}

// Outcome is the typed result of one pipeline iteration. Fields are filled
// as far as the utterance progressed.
type Outcome struct {
	// Transcript is the cleaned STT text.
	Transcript string

	// Wake is the spotting result.
	Wake wake.Result

	// Decision is the classified intent; zero when the wake word was absent.
	Decision intent.Decision

	// Skill is the dispatch result; zero when nothing was dispatched.
	Skill skill.Result

	// Dispatched reports whether the utterance made it all the way through
	// dispatch.
	Dispatched bool
}

// Pipeline owns the per-utterance state machine. The collaborators are
// process-lifetime and read-only to the pipeline; everything per-utterance
// is local to one RunOnce call.
type Pipeline struct {
	capturer   audio.Capturer
	stt        stt.Provider
	spotter    *wake.Spotter
	classifier Classifier
	registry   *skill.Registry
	metrics    *observe.Metrics
	logger     *slog.Logger
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithSpotter sets the wake-word spotter. Defaults to one with the built-in
// pattern set.
func WithSpotter(s *wake.Spotter) Option {
	return func(p *Pipeline) {
		p.spotter = s
	}
}

// New creates a pipeline over the given collaborators.
func New(capturer audio.Capturer, sttProvider stt.Provider, classifier Classifier, registry *skill.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		capturer:   capturer,
		stt:        sttProvider,
		classifier: classifier,
		registry:   registry,
		spotter:    wake.NewSpotter(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Run loops RunOnce until ctx is cancelled. Stage errors fail only their own
// utterance: they are logged and counted, and the loop continues.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started, waiting for speech")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.metrics.RecordUtterance(ctx, "error")
			p.logger.Error("utterance failed", "error", err)
		}
	}
}

// RunOnce processes a single utterance through the full state sequence and
// returns how far it got. The returned error carries the failing stage in
// its message; callers treat any error as fatal to this utterance only.
func (p *Pipeline) RunOnce(ctx context.Context) (Outcome, error) {
	var out Outcome

	// Capturing.
	wavData, err := p.capturer.Capture(ctx)
	if err != nil {
		return out, p.stageErr(ctx, StageCapture, err)
	}

	// Transcribing.
	start := time.Now()
	tr, err := p.stt.Transcribe(ctx, wavData)
	p.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return out, p.stageErr(ctx, StageTranscribe, err)
	}
	out.Transcript = transcript.Clean(tr.Text)
	p.logger.Info("utterance transcribed", "text", out.Transcript, "language", tr.Language)

	// Spotting.
	out.Wake = p.spotter.Spot(out.Transcript)
	if !out.Wake.Matched {
		p.logger.Debug("no wake word, back to idle", "text", out.Transcript)
		p.metrics.RecordUtterance(ctx, "no_wake")
		return out, nil
	}
	p.metrics.RecordWakeMatch(ctx, wakePath(out.Wake), patternLabel(out.Wake))
	p.logger.Info("wake word detected",
		"literal", out.Wake.Literal,
		"pattern", strings.Join(out.Wake.Pattern, "-"),
		"distance", out.Wake.Distance,
		"command", out.Wake.Command)

	// Classifying.
	start = time.Now()
	out.Decision, err = p.classifier.Classify(ctx, out.Wake.Command)
	p.metrics.ClassifyDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return out, p.stageErr(ctx, StageClassify, err)
	}
	p.logger.Info("intent classified",
		"intent", string(out.Decision.Intent),
		"message", out.Decision.Message)

	// Dispatching.
	start = time.Now()
	out.Skill, err = p.registry.Dispatch(ctx, out.Decision)
	p.metrics.DispatchDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return out, p.stageErr(ctx, StageDispatch, err)
	}
	if out.Skill.Published != "" {
		p.metrics.RecordPublish(ctx, out.Skill.Published)
	}
	out.Dispatched = true
	p.metrics.RecordUtterance(ctx, "dispatched")
	return out, nil
}

func (p *Pipeline) stageErr(ctx context.Context, stage Stage, err error) error {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.metrics.RecordStageError(ctx, string(stage))
	}
	return fmt.Errorf("app: %s: %w", stage, err)
}

func wakePath(res wake.Result) string {
	if res.Literal {
		return "literal"
	}
	return "phonetic"
}

// patternLabel names the matched wake form for the metrics attribute.
// Literal matches have no pinyin pattern, so they get a fixed label instead
// of an empty attribute value.
func patternLabel(res wake.Result) string {
	if res.Literal {
		return "literal"
	}
	return strings.Join(res.Pattern, "-")
}
