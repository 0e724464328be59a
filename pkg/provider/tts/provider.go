// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service and exposes a batch
// interface: one message in, one complete audio clip out. The assistant plays
// replies as whole utterances, so no streaming synthesis is needed; latency
// masking is handled one layer up by the reply player's filler-clip policy.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize converts text into a playable audio clip (typically
	// WAV-encoded) and blocks until the full clip is available or ctx is
	// cancelled. A non-success response from the backend is an error.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
