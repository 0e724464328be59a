package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// validClassifierProviders lists the LLM backends the classifier can use.
var validClassifierProviders = []string{"deepseek", "openai", "ollama"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, expands ${VAR} environment
// references, applies defaults, and validates the result. Useful in tests
// where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	expanded := os.ExpandEnv(string(raw))

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset optional fields with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = "muelsyse"
	}
	if cfg.Classifier.Provider == "" {
		cfg.Classifier.Provider = "deepseek"
	}
	if cfg.Classifier.Model == "" {
		cfg.Classifier.Model = "deepseek-chat"
	}
	if cfg.Classifier.TimeoutSeconds == 0 {
		cfg.Classifier.TimeoutSeconds = 60
	}
	if cfg.STT.Language == "" {
		cfg.STT.Language = "zh"
	}
	if cfg.TTS.TextLanguage == "" {
		cfg.TTS.TextLanguage = "zh"
	}
	if cfg.TTS.PromptLanguage == "" {
		cfg.TTS.PromptLanguage = "zh"
	}
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = 16000
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Broker.URL == "" {
		errs = append(errs, errors.New("broker.url is required"))
	}
	if cfg.Broker.Topic == "" {
		errs = append(errs, errors.New("broker.topic is required"))
	}

	for i, pattern := range cfg.Wake.Patterns {
		if len(pattern) == 0 {
			errs = append(errs, fmt.Errorf("wake.patterns[%d] is empty", i))
			continue
		}
		if slices.Contains(pattern, "") {
			errs = append(errs, fmt.Errorf("wake.patterns[%d] contains an empty syllable", i))
		}
	}

	if !slices.Contains(validClassifierProviders, cfg.Classifier.Provider) {
		errs = append(errs, fmt.Errorf("classifier.provider %q is invalid; valid values: deepseek, openai, ollama", cfg.Classifier.Provider))
	}
	if cfg.Classifier.APIKey == "" && cfg.Classifier.Provider != "ollama" {
		errs = append(errs, fmt.Errorf("classifier.api_key is required for provider %q", cfg.Classifier.Provider))
	}
	if cfg.Classifier.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("classifier.timeout_seconds %d must not be negative", cfg.Classifier.TimeoutSeconds))
	}

	if cfg.STT.Endpoint == "" {
		errs = append(errs, errors.New("stt.endpoint is required"))
	}

	if cfg.TTS.Endpoint == "" {
		errs = append(errs, errors.New("tts.endpoint is required"))
	}
	if cfg.TTS.ReferWAVPath == "" {
		errs = append(errs, errors.New("tts.refer_wav_path is required"))
	}
	if cfg.TTS.PromptText == "" {
		errs = append(errs, errors.New("tts.prompt_text is required"))
	}

	if cfg.Audio.ClipDir == "" {
		errs = append(errs, errors.New("audio.clip_dir is required"))
	}
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 48000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [8000, 48000]", cfg.Audio.SampleRate))
	}

	return errors.Join(errs...)
}
