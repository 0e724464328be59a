// Package sovits provides a TTS provider backed by a GPT-SoVITS inference
// server.
//
// GPT-SoVITS performs zero-shot voice cloning: every synthesis request carries
// a reference audio path plus its prompt text and language, and the server
// renders the requested text in the reference voice. Synthesis is performed
// via GET / with URL query parameters; the response body is a complete WAV
// clip.
//
// Usage:
//
//	p, err := sovits.New("http://localhost:9880", sovits.VoiceReference{
//	    ReferenceWAVPath: "ref/muelsyse.wav",
//	    PromptText:       "源石技艺的本质是什么呢？",
//	    PromptLanguage:   "zh",
//	})
//	clip, err := p.Synthesize(ctx, "好的，已经把灯打开了。")
package sovits

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/tts"
)

// Compile-time assertion that Provider implements tts.Provider.
var _ tts.Provider = (*Provider)(nil)

const (
	defaultTimeout      = 30 * time.Second
	defaultTextLanguage = "zh"
)

// VoiceReference identifies the cloned voice used for every synthesis call.
// All three fields are forwarded verbatim to the server; their contents are
// opaque to this client.
type VoiceReference struct {
	// ReferenceWAVPath is the server-side path of the reference audio clip.
	ReferenceWAVPath string

	// PromptText is the transcript of the reference clip.
	PromptText string

	// PromptLanguage is the language of the reference transcript (e.g., "zh").
	PromptLanguage string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTextLanguage sets the language tag sent for the text being synthesised.
// Defaults to "zh".
func WithTextLanguage(lang string) Option {
	return func(p *Provider) {
		p.textLanguage = lang
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s; GPT-SoVITS
// renders in real time so long replies need generous headroom.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements tts.Provider against a GPT-SoVITS API server.
// It is safe for concurrent use.
type Provider struct {
	serverURL    string
	voice        VoiceReference
	textLanguage string
	httpClient   *http.Client
}

// New creates a Provider targeting the GPT-SoVITS server at serverURL
// (e.g., "http://localhost:9880"). serverURL must be non-empty and voice must
// carry a reference audio path.
func New(serverURL string, voice VoiceReference, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("sovits: serverURL must not be empty")
	}
	if voice.ReferenceWAVPath == "" {
		return nil, errors.New("sovits: voice.ReferenceWAVPath must not be empty")
	}
	p := &Provider{
		serverURL:    serverURL,
		voice:        voice,
		textLanguage: defaultTextLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Synthesize implements tts.Provider. It issues a single GET request with the
// text and voice-reference query parameters and returns the raw WAV response.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("sovits: text must not be empty")
	}

	params := url.Values{}
	params.Set("text", text)
	params.Set("text_language", p.textLanguage)
	params.Set("refer_wav_path", p.voice.ReferenceWAVPath)
	params.Set("prompt_text", p.voice.PromptText)
	params.Set("prompt_language", p.voice.PromptLanguage)

	reqURL := p.serverURL + "/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sovits: create request: %w", err)
	}
	req.Header.Set("Accept", "audio/wav")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sovits: GET synthesis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sovits: synthesis returned status %d: %s",
			resp.StatusCode, bytes.TrimSpace(snippet))
	}

	clip, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sovits: read audio response: %w", err)
	}
	if len(clip) == 0 {
		return nil, errors.New("sovits: server returned empty audio")
	}
	return clip, nil
}
