// Package malgo implements audio.Capturer using the miniaudio bindings from
// github.com/gen2brain/malgo.
//
// The capturer records 16 kHz mono 16-bit PCM from the default input device
// and segments the stream into utterances with an energy-based voice activity
// detector: an utterance starts after a short burst of speech frames and ends
// after a second of trailing silence. Each completed utterance is returned as
// a WAV file ready for the STT boundary.
package malgo

import (
	"context"
	"fmt"
	"sync"

	malgolib "github.com/gen2brain/malgo"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/audio"
)

// Compile-time assertion that Capturer implements audio.Capturer.
var _ audio.Capturer = (*Capturer)(nil)

// Config holds the capture format. The defaults match what SenseVoice-style
// STT models expect.
type Config struct {
	// SampleRate in Hz. Default 16000.
	SampleRate uint32

	// FrameSizeMs is the duration of each capture callback frame in
	// milliseconds. Default 30.
	FrameSizeMs uint32

	// VAD configures utterance segmentation. Zero value uses
	// audio.DefaultVADConfig.
	VAD audio.VADConfig
}

// DefaultConfig returns the 16 kHz mono capture configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		FrameSizeMs: 30,
		VAD:         audio.DefaultVADConfig(),
	}
}

// Capturer records single utterances from the default input device.
//
// The device runs continuously from New until Close; Capture consumes frames
// from the device callback and applies VAD segmentation. Only one Capture
// call may be active at a time — the pipeline is strictly sequential.
type Capturer struct {
	cfg    Config
	mctx   *malgolib.AllocatedContext
	device *malgolib.Device
	frames chan []byte

	closeOnce sync.Once
}

// New initialises the capture device and starts the microphone stream.
func New(cfg Config) (*Capturer, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameSizeMs == 0 {
		cfg.FrameSizeMs = 30
	}
	if cfg.VAD == (audio.VADConfig{}) {
		cfg.VAD = audio.DefaultVADConfig()
	}

	c := &Capturer{
		cfg: cfg,
		// Enough backlog for several seconds of frames so a slow consumer
		// (e.g. STT still running) does not drop the start of an utterance.
		frames: make(chan []byte, 256),
	}

	mctx, err := malgolib.InitContext(nil, malgolib.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: init context: %w", err)
	}
	c.mctx = mctx

	deviceConfig := malgolib.DefaultDeviceConfig(malgolib.Capture)
	deviceConfig.Capture.Format = malgolib.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = cfg.SampleRate
	deviceConfig.PeriodSizeInFrames = cfg.SampleRate * cfg.FrameSizeMs / 1000

	callbacks := malgolib.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			frame := make([]byte, len(input))
			copy(frame, input)
			select {
			case c.frames <- frame:
			default:
				// Consumer is stalled; drop the oldest frame to keep the
				// stream roughly current.
				select {
				case <-c.frames:
				default:
				}
				select {
				case c.frames <- frame:
				default:
				}
			}
		},
	}

	device, err := malgolib.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("malgo: init device: %w", err)
	}
	c.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("malgo: start device: %w", err)
	}

	return c, nil
}

// Capture implements audio.Capturer. It discards frames until speech starts,
// then accumulates PCM until the VAD reports the utterance has ended, and
// returns the recording as a WAV file.
func (c *Capturer) Capture(ctx context.Context) ([]byte, error) {
	vad := audio.NewVAD(c.cfg.VAD)

	// Keep a small pre-roll so the first syllable is not clipped: the VAD
	// needs a few speech frames before it triggers.
	preRollFrames := c.cfg.VAD.SpeechFrames + 2
	var preRoll [][]byte
	var utterance []byte
	recording := false

	for {
		select {
		case frame := <-c.frames:
			_, started, ended := vad.ProcessFrame(frame)

			if !recording {
				preRoll = append(preRoll, frame)
				if len(preRoll) > preRollFrames {
					preRoll = preRoll[1:]
				}
				if started {
					recording = true
					for _, f := range preRoll {
						utterance = append(utterance, f...)
					}
					preRoll = nil
				}
				continue
			}

			utterance = append(utterance, frame...)
			if ended {
				return audio.EncodeWAV(utterance, int(c.cfg.SampleRate), 1), nil
			}

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close implements audio.Capturer.
func (c *Capturer) Close() error {
	c.closeOnce.Do(func() {
		if c.device != nil {
			c.device.Uninit()
		}
		if c.mctx != nil {
			c.mctx.Uninit()
			c.mctx.Free()
		}
	})
	return nil
}
