// Package config provides the configuration schema and loader for the
// Muelsyse voice assistant.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader]; ${VAR} references anywhere in
// the file are expanded from the environment before decoding, so secrets can
// live in the environment or a .env file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Broker     BrokerConfig     `yaml:"broker"`
	Wake       WakeConfig       `yaml:"wake"`
	Classifier ClassifierConfig `yaml:"classifier"`
	STT        STTConfig        `yaml:"stt"`
	TTS        TTSConfig        `yaml:"tts"`
	Audio      AudioConfig      `yaml:"audio"`
}

// WakeConfig tunes the wake-word spotter.
type WakeConfig struct {
	// Patterns overrides the built-in phonetic wake patterns. Each pattern
	// is a sequence of toneless pinyin syllables, tried in order. Leave
	// empty to keep the defaults.
	Patterns [][]string `yaml:"patterns"`
}

// ServerConfig holds logging and metrics-endpoint settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the /metrics endpoint listens on
	// (e.g., ":8080"). Default ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Default "info".
	LogLevel LogLevel `yaml:"log_level"`
}

// BrokerConfig holds the MQTT connection settings for light control.
type BrokerConfig struct {
	// URL is the broker address, e.g. "tcp://192.168.1.10:1883". Required.
	URL string `yaml:"url"`

	// Topic is the topic light commands are published to. Required.
	Topic string `yaml:"topic"`

	// Username and Password authenticate the client. May be empty.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// ClientID identifies this client to the broker. Default "muelsyse".
	ClientID string `yaml:"client_id"`
}

// ClassifierConfig selects and authenticates the reasoning service behind
// the intent classifier.
type ClassifierConfig struct {
	// Provider selects the LLM backend: "deepseek", "openai", or "ollama".
	// Default "deepseek".
	Provider string `yaml:"provider"`

	// Model is the model identifier, e.g. "deepseek-chat". Default
	// "deepseek-chat".
	Model string `yaml:"model"`

	// APIKey authenticates against the provider. Required except for
	// "ollama".
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds one classification request. Default 60.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// STTConfig points at the speech-to-text service.
type STTConfig struct {
	// Endpoint is the base URL of the SenseVoice API server. Required.
	Endpoint string `yaml:"endpoint"`

	// Language hints the recognition language. Default "zh".
	Language string `yaml:"language"`
}

// TTSConfig points at the GPT-SoVITS synthesis service and its voice
// reference.
type TTSConfig struct {
	// Endpoint is the base URL of the GPT-SoVITS API server. Required.
	Endpoint string `yaml:"endpoint"`

	// TextLanguage is the language of synthesised text. Default "zh".
	TextLanguage string `yaml:"text_language"`

	// ReferWAVPath is the server-side path of the voice reference clip.
	// Required.
	ReferWAVPath string `yaml:"refer_wav_path"`

	// PromptText is the transcript of the voice reference clip. Required.
	PromptText string `yaml:"prompt_text"`

	// PromptLanguage is the language of PromptText. Default "zh".
	PromptLanguage string `yaml:"prompt_language"`
}

// AudioConfig holds local playback and capture settings.
type AudioConfig struct {
	// ClipDir is the directory holding the canned confirmation and filler
	// clips (on_1.wav … wait_18.wav). Required.
	ClipDir string `yaml:"clip_dir"`

	// SampleRate is the microphone capture rate in Hz. Default 16000.
	SampleRate int `yaml:"sample_rate"`
}
