package config

import (
	"strings"
	"testing"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
broker:
  url: tcp://localhost:1883
  topic: home/light
  username: mqtt
  password: mqtt
classifier:
  provider: deepseek
  model: deepseek-chat
  api_key: sk-test
stt:
  endpoint: http://localhost:9880
tts:
  endpoint: http://localhost:9881
  refer_wav_path: /data/ref.wav
  prompt_text: 你好，我是缪尔赛思
audio:
  clip_dir: template
`

func TestLoadFromReaderValid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Broker.Topic != "home/light" {
		t.Errorf("Topic = %q", cfg.Broker.Topic)
	}
}

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`
broker:
  url: tcp://localhost:1883
  topic: home/light
classifier:
  api_key: sk-test
stt:
  endpoint: http://localhost:9880
tts:
  endpoint: http://localhost:9881
  refer_wav_path: /data/ref.wav
  prompt_text: hi
audio:
  clip_dir: template
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr default = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("LogLevel default = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Classifier.Provider != "deepseek" || cfg.Classifier.Model != "deepseek-chat" {
		t.Errorf("classifier defaults = %q/%q", cfg.Classifier.Provider, cfg.Classifier.Model)
	}
	if cfg.Broker.ClientID != "muelsyse" {
		t.Errorf("ClientID default = %q", cfg.Broker.ClientID)
	}
	if cfg.STT.Language != "zh" || cfg.TTS.TextLanguage != "zh" || cfg.TTS.PromptLanguage != "zh" {
		t.Error("language defaults not applied")
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate default = %d", cfg.Audio.SampleRate)
	}
	if cfg.Classifier.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds default = %d, want 60", cfg.Classifier.TimeoutSeconds)
	}
}

func TestLoadFromReaderWakePatterns(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML + `
wake:
  patterns:
    - [miu, er]
    - [sai, si]
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if len(cfg.Wake.Patterns) != 2 || cfg.Wake.Patterns[0][0] != "miu" {
		t.Errorf("Patterns = %v", cfg.Wake.Patterns)
	}
}

func TestValidateRejectsBadWakePatterns(t *testing.T) {
	cfg := &Config{
		Broker:     BrokerConfig{URL: "tcp://localhost:1883", Topic: "t"},
		Wake:       WakeConfig{Patterns: [][]string{{}, {"miu", ""}}},
		Classifier: ClassifierConfig{Provider: "ollama", Model: "qwen2.5"},
		STT:        STTConfig{Endpoint: "http://localhost:9880"},
		TTS:        TTSConfig{Endpoint: "http://localhost:9881", ReferWAVPath: "/r.wav", PromptText: "hi"},
		Audio:      AudioConfig{ClipDir: "template", SampleRate: 16000},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"wake.patterns[0] is empty", "wake.patterns[1] contains an empty syllable"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestLoadFromReaderExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DEEPSEEK_KEY", "sk-from-env")

	cfg, err := LoadFromReader(strings.NewReader(strings.Replace(validYAML,
		"api_key: sk-test", "api_key: ${TEST_DEEPSEEK_KEY}", 1)))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Classifier.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.Classifier.APIKey)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(validYAML + "\nbogus_section: 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	err := Validate(&Config{
		Server: ServerConfig{LogLevel: "loud"},
		Audio:  AudioConfig{SampleRate: 16000},
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		"server.log_level",
		"broker.url is required",
		"broker.topic is required",
		"classifier.provider",
		"stt.endpoint is required",
		"tts.endpoint is required",
		"tts.refer_wav_path is required",
		"tts.prompt_text is required",
		"audio.clip_dir is required",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateOllamaNeedsNoAPIKey(t *testing.T) {
	cfg := &Config{
		Broker:     BrokerConfig{URL: "tcp://localhost:1883", Topic: "t"},
		Classifier: ClassifierConfig{Provider: "ollama", Model: "qwen2.5"},
		STT:        STTConfig{Endpoint: "http://localhost:9880"},
		TTS:        TTSConfig{Endpoint: "http://localhost:9881", ReferWAVPath: "/r.wav", PromptText: "hi"},
		Audio:      AudioConfig{ClipDir: "template", SampleRate: 16000},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	cfg := &Config{
		Broker:     BrokerConfig{URL: "tcp://localhost:1883", Topic: "t"},
		Classifier: ClassifierConfig{Provider: "deepseek"},
		STT:        STTConfig{Endpoint: "http://localhost:9880"},
		TTS:        TTSConfig{Endpoint: "http://localhost:9881", ReferWAVPath: "/r.wav", PromptText: "hi"},
		Audio:      AudioConfig{ClipDir: "template", SampleRate: 16000},
	}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "classifier.api_key") {
		t.Fatalf("Validate = %v, want api_key error", err)
	}
}
