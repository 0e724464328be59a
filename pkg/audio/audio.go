// Package audio defines the playback and capture boundaries of the assistant
// plus the canned-clip library used for confirmations and latency-masking
// fillers.
//
// Playback and capture are external collaborators: the pipeline only ever
// asks to "play this clip", "play these bytes", or "give me the next
// utterance". Implementations live in the beep and malgo subpackages; tests
// use the mock subpackage.
package audio

import "context"

// Player plays audio out of the device speakers.
//
// Implementations must be safe for concurrent use, but the pipeline itself is
// strictly sequential — at most one playback is active at a time.
type Player interface {
	// PlayClip plays a named clip from the library and blocks until playback
	// finishes or ctx is cancelled.
	PlayClip(ctx context.Context, name string) error

	// PlayBytes plays a WAV-encoded clip held in memory and blocks until
	// playback finishes or ctx is cancelled.
	PlayBytes(ctx context.Context, wavData []byte) error
}

// Capturer records one utterance at a time from the microphone.
type Capturer interface {
	// Capture blocks until a complete utterance has been recorded (speech
	// detected, then a trailing silence boundary) and returns it as
	// WAV-encoded audio. Returns ctx.Err() if ctx is cancelled while waiting.
	Capture(ctx context.Context) ([]byte, error)

	// Close releases the underlying audio device.
	Close() error
}
