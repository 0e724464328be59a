// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (e.g., a SenseVoice inference
// server) and exposes a batch interface: one complete utterance in, one
// transcript out. The assistant captures a full utterance before transcribing,
// so no streaming session management is needed.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Transcript represents a speech-to-text result from an STT provider.
type Transcript struct {
	// Text is the transcribed speech content. It may contain recognizer
	// markup tags (e.g., SenseVoice's <|zh|><|NEUTRAL|> prefixes) that the
	// caller is expected to strip before further processing.
	Text string

	// Language is the detected or configured language code (e.g., "zh").
	// May be empty if the provider does not report it.
	Language string

	// Confidence is the overall confidence score (0.0–1.0). May be zero if
	// the provider does not report confidence.
	Confidence float64
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe submits one complete utterance as WAV-encoded audio and
	// blocks until the transcript is available or ctx is cancelled.
	Transcribe(ctx context.Context, wavData []byte) (Transcript, error)
}
