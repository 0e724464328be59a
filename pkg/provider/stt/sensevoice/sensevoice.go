// Package sensevoice provides an STT provider backed by a SenseVoice
// inference server exposing a REST API.
//
// The server is expected to accept a multipart POST of one WAV file and
// respond with a JSON body carrying the recognised text. SenseVoice emits
// rich-transcription markup tags (<|zh|><|NEUTRAL|><|Speech|> and friends)
// inline in the text; the provider returns them untouched — stripping is the
// transcript cleanup stage's job, not the transport's.
//
// Usage:
//
//	p, err := sensevoice.New("http://localhost:8001",
//	    sensevoice.WithLanguage("zh"),
//	)
//	tr, err := p.Transcribe(ctx, wavBytes)
package sensevoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/stt"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

const (
	defaultTimeout  = 30 * time.Second
	defaultLanguage = "zh"

	// asrEndpoint is the inference route exposed by the SenseVoice API server.
	asrEndpoint = "/api/v1/asr"
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the recognition language hint sent with every request
// (e.g., "zh", "en", "auto"). Defaults to "zh".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements stt.Provider against a SenseVoice REST server.
// It is safe for concurrent use.
type Provider struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// New creates a Provider targeting the SenseVoice server at serverURL
// (e.g., "http://localhost:8001"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("sensevoice: serverURL must not be empty")
	}
	p := &Provider{
		serverURL: serverURL,
		language:  defaultLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// asrResponse is the JSON body returned by POST /api/v1/asr.
// The server returns one result entry per uploaded file.
type asrResponse struct {
	Result []asrResult `json:"result"`
}

type asrResult struct {
	Text     string  `json:"text"`
	RawText  string  `json:"raw_text"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// Transcribe implements stt.Provider. It uploads wavData as a multipart form
// file and decodes the first result entry from the response.
func (p *Provider) Transcribe(ctx context.Context, wavData []byte) (stt.Transcript, error) {
	if len(wavData) == 0 {
		return stt.Transcript{}, errors.New("sensevoice: empty audio payload")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("files", "utterance.wav")
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: create form file: %w", err)
	}
	if _, err := fw.Write(wavData); err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: write form file: %w", err)
	}
	if err := mw.WriteField("lang", p.language); err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: write lang field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+asrEndpoint, &body)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: POST %s: %w", asrEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a short error snippet for the log; servers return plain text
		// or JSON error bodies here.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return stt.Transcript{}, fmt.Errorf("sensevoice: POST %s returned status %d: %s",
			asrEndpoint, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var decoded asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return stt.Transcript{}, fmt.Errorf("sensevoice: decode response: %w", err)
	}
	if len(decoded.Result) == 0 {
		return stt.Transcript{}, errors.New("sensevoice: response contains no results")
	}

	r := decoded.Result[0]
	text := r.RawText
	if text == "" {
		text = r.Text
	}
	return stt.Transcript{
		Text:       text,
		Language:   r.Language,
		Confidence: r.Score,
	}, nil
}
