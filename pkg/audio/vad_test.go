package audio

import (
	"encoding/binary"
	"testing"
)

// frame builds a 16-bit PCM frame where every sample has the given amplitude.
func frame(amplitude int16, samples int) []byte {
	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(amplitude))
	}
	return buf
}

func testVADConfig() VADConfig {
	return VADConfig{EnergyThreshold: 0.01, SpeechFrames: 3, SilenceFrames: 5}
}

func TestVADStartsAfterConsecutiveSpeechFrames(t *testing.T) {
	t.Parallel()

	vad := NewVAD(testVADConfig())
	loud := frame(8000, 480)

	for i := 0; i < 2; i++ {
		if _, started, _ := vad.ProcessFrame(loud); started {
			t.Fatalf("started after %d frames, want 3", i+1)
		}
	}
	active, started, _ := vad.ProcessFrame(loud)
	if !started || !active {
		t.Fatal("expected start on third consecutive speech frame")
	}
}

func TestVADSilenceDoesNotStart(t *testing.T) {
	t.Parallel()

	vad := NewVAD(testVADConfig())
	quiet := frame(10, 480)

	for i := 0; i < 50; i++ {
		if active, started, _ := vad.ProcessFrame(quiet); active || started {
			t.Fatal("silence must not trigger speech")
		}
	}
}

func TestVADEndsAfterTrailingSilence(t *testing.T) {
	t.Parallel()

	cfg := testVADConfig()
	vad := NewVAD(cfg)
	loud := frame(8000, 480)
	quiet := frame(10, 480)

	for i := 0; i < cfg.SpeechFrames; i++ {
		vad.ProcessFrame(loud)
	}

	for i := 0; i < cfg.SilenceFrames-1; i++ {
		if _, _, ended := vad.ProcessFrame(quiet); ended {
			t.Fatalf("ended after %d silence frames, want %d", i+1, cfg.SilenceFrames)
		}
	}
	active, _, ended := vad.ProcessFrame(quiet)
	if !ended || active {
		t.Fatal("expected end after the configured trailing silence")
	}
}

func TestVADBriefSilenceDoesNotEnd(t *testing.T) {
	t.Parallel()

	cfg := testVADConfig()
	vad := NewVAD(cfg)
	loud := frame(8000, 480)
	quiet := frame(10, 480)

	for i := 0; i < cfg.SpeechFrames; i++ {
		vad.ProcessFrame(loud)
	}

	// A short pause inside the utterance, then speech resumes.
	vad.ProcessFrame(quiet)
	vad.ProcessFrame(quiet)
	vad.ProcessFrame(loud)

	for i := 0; i < cfg.SilenceFrames-1; i++ {
		if _, _, ended := vad.ProcessFrame(quiet); ended {
			t.Fatal("silence counter must reset when speech resumes")
		}
	}
	if _, _, ended := vad.ProcessFrame(quiet); !ended {
		t.Fatal("expected end after full trailing silence")
	}
}

func TestVADReset(t *testing.T) {
	t.Parallel()

	vad := NewVAD(testVADConfig())
	loud := frame(8000, 480)

	vad.ProcessFrame(loud)
	vad.ProcessFrame(loud)
	vad.Reset()

	// After a reset the speech counter starts over.
	if _, started, _ := vad.ProcessFrame(loud); started {
		t.Fatal("started too early after Reset")
	}
}

func TestRMSEnergyRange(t *testing.T) {
	t.Parallel()

	if got := rmsEnergy(nil); got != 0 {
		t.Errorf("rmsEnergy(nil) = %f, want 0", got)
	}
	if got := rmsEnergy(frame(0, 100)); got != 0 {
		t.Errorf("silence energy = %f, want 0", got)
	}
	full := rmsEnergy(frame(32767, 100))
	if full <= 0.9 || full > 1.0 {
		t.Errorf("full-scale energy = %f, want close to 1.0", full)
	}
}
