// Command muelsyse is the voice-assistant front end: it listens on the
// microphone, spots the wake word, classifies the command, and either
// toggles the smart light over MQTT or speaks a reply.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/DuoDuoJuZi/Myurujisu/internal/app"
	"github.com/DuoDuoJuZi/Myurujisu/internal/broker/mqtt"
	"github.com/DuoDuoJuZi/Myurujisu/internal/config"
	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
	"github.com/DuoDuoJuZi/Myurujisu/internal/observe"
	"github.com/DuoDuoJuZi/Myurujisu/internal/reply"
	"github.com/DuoDuoJuZi/Myurujisu/internal/skill"
	"github.com/DuoDuoJuZi/Myurujisu/internal/wake"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
	beepplayer "github.com/DuoDuoJuZi/Myurujisu/pkg/audio/beep"
	malgocapture "github.com/DuoDuoJuZi/Myurujisu/pkg/audio/malgo"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/llm"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/llm/anyllm"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/stt/sensevoice"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/tts/sovits"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := pflag.String("config", "config.yaml", "path to the YAML configuration file")
	envPath := pflag.String("env", ".env", "path to an optional env file with secrets")
	pflag.Parse()

	// Secrets may live in a .env file; the config loader expands ${VAR}
	// references from the environment.
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "muelsyse: load %q: %v\n", *envPath, err)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "muelsyse: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "muelsyse: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("muelsyse starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "muelsyse",
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	// ── Broker ────────────────────────────────────────────────────────────────
	publisher, err := mqtt.Connect(mqtt.Config{
		BrokerURL: cfg.Broker.URL,
		Topic:     cfg.Broker.Topic,
		Username:  cfg.Broker.Username,
		Password:  cfg.Broker.Password,
		ClientID:  cfg.Broker.ClientID,
	})
	if err != nil {
		slog.Error("failed to connect to MQTT broker", "err", err)
		return 1
	}
	defer publisher.Close()
	slog.Info("broker connected", "url", cfg.Broker.URL, "topic", cfg.Broker.Topic)

	// ── External services ─────────────────────────────────────────────────────
	classifier, err := newClassifier(cfg.Classifier)
	if err != nil {
		slog.Error("failed to create classifier", "err", err)
		return 1
	}

	sttProvider, err := sensevoice.New(cfg.STT.Endpoint, sensevoice.WithLanguage(cfg.STT.Language))
	if err != nil {
		slog.Error("failed to create STT provider", "err", err)
		return 1
	}

	ttsProvider, err := sovits.New(cfg.TTS.Endpoint, sovits.VoiceReference{
		ReferenceWAVPath: cfg.TTS.ReferWAVPath,
		PromptText:       cfg.TTS.PromptText,
		PromptLanguage:   cfg.TTS.PromptLanguage,
	}, sovits.WithTextLanguage(cfg.TTS.TextLanguage))
	if err != nil {
		slog.Error("failed to create TTS provider", "err", err)
		return 1
	}

	// ── Audio ─────────────────────────────────────────────────────────────────
	library := audio.NewLibrary(cfg.Audio.ClipDir)
	player := beepplayer.NewPlayer(library)

	captureCfg := malgocapture.DefaultConfig()
	captureCfg.SampleRate = uint32(cfg.Audio.SampleRate)
	capturer, err := malgocapture.New(captureCfg)
	if err != nil {
		slog.Error("failed to open microphone", "err", err)
		return 1
	}
	defer capturer.Close()

	// ── Skills ────────────────────────────────────────────────────────────────
	replies := reply.NewPlayer(ttsProvider, player)
	registry := skill.NewRegistry(skill.NewSpeakMessage(replies))
	registry.Register(intent.IntentLightControl, skill.NewLight(player, publisher))
	registry.Register(intent.IntentChat, skill.NewChat(replies))

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	var spotterOpts []wake.Option
	if len(cfg.Wake.Patterns) > 0 {
		spotterOpts = append(spotterOpts, wake.WithPatterns(cfg.Wake.Patterns))
	}
	pipeline := app.New(capturer, sttProvider, classifier, registry,
		app.WithSpotter(wake.NewSpotter(spotterOpts...)))

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	metricsServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: newMetricsMux(),
	}
	g.Go(func() error {
		slog.Info("metrics endpoint ready", "addr", cfg.Server.ListenAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return pipeline.Run(gctx)
	})

	slog.Info("ready — press Ctrl+C to shut down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// newClassifier wires the configured LLM backend into the intent gateway.
func newClassifier(cfg config.ClassifierConfig) (*intent.Classifier, error) {
	var opts []anyllmlib.Option
	if cfg.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}

	var provider llm.Provider
	var err error
	switch cfg.Provider {
	case "deepseek":
		provider, err = anyllm.NewDeepSeek(cfg.Model, opts...)
	case "openai":
		provider, err = anyllm.NewOpenAI(cfg.Model, opts...)
	case "ollama":
		provider, err = anyllm.NewOllama(cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return intent.NewClassifier(provider, intent.WithTimeout(timeout)), nil
}

func newMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        Muelsyse — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printEntry("Classifier", cfg.Classifier.Provider+" / "+cfg.Classifier.Model)
	printEntry("STT", cfg.STT.Endpoint)
	printEntry("TTS", cfg.TTS.Endpoint)
	printEntry("Broker", cfg.Broker.URL)
	printEntry("Topic", cfg.Broker.Topic)
	printEntry("Clips", cfg.Audio.ClipDir)
	printEntry("Metrics", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printEntry(kind, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
