package audio

import "math"

// VADConfig holds configuration for the energy-based voice activity detector
// used to find utterance boundaries in the capture stream.
type VADConfig struct {
	// EnergyThreshold is the minimum normalised RMS energy (0.0–1.0) for a
	// frame to count as speech. Lower is more sensitive.
	EnergyThreshold float64

	// SpeechFrames is the number of consecutive speech frames required before
	// an utterance is considered started.
	SpeechFrames int

	// SilenceFrames is the number of consecutive silent frames after speech
	// that ends the utterance.
	SilenceFrames int
}

// DefaultVADConfig returns thresholds tuned for 30 ms frames at 16 kHz:
// ~90 ms of speech to trigger, ~1 s of silence to finish.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		EnergyThreshold: 0.01,
		SpeechFrames:    3,
		SilenceFrames:   33,
	}
}

// VAD detects speech versus silence over a sequence of PCM frames.
// It is a small state machine: feed frames in capture order and watch the
// started/ended signals. Not safe for concurrent use.
type VAD struct {
	cfg          VADConfig
	speechCount  int
	silenceCount int
	speaking     bool
}

// NewVAD creates a detector with the given thresholds.
func NewVAD(cfg VADConfig) *VAD {
	return &VAD{cfg: cfg}
}

// ProcessFrame feeds one frame of little-endian 16-bit PCM and reports the
// current activity state plus edge signals for utterance start and end.
func (v *VAD) ProcessFrame(frame []byte) (active, started, ended bool) {
	energy := rmsEnergy(frame)
	hasSpeech := energy > v.cfg.EnergyThreshold

	if hasSpeech {
		v.speechCount++
		v.silenceCount = 0
		if !v.speaking && v.speechCount >= v.cfg.SpeechFrames {
			v.speaking = true
			started = true
		}
	} else {
		v.speechCount = 0
		if v.speaking {
			v.silenceCount++
			if v.silenceCount >= v.cfg.SilenceFrames {
				v.speaking = false
				v.silenceCount = 0
				ended = true
			}
		}
	}
	return v.speaking, started, ended
}

// Reset clears all detector state for the next utterance.
func (v *VAD) Reset() {
	v.speechCount = 0
	v.silenceCount = 0
	v.speaking = false
}

// rmsEnergy computes the normalised root-mean-square energy of a 16-bit PCM
// frame. The result is in [0.0, 1.0].
func rmsEnergy(frame []byte) float64 {
	if len(frame) < 2 {
		return 0
	}
	var sum float64
	n := len(frame) / 2
	for i := 0; i < n; i++ {
		s := int16(frame[i*2]) | int16(frame[i*2+1])<<8
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}
