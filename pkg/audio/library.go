package audio

import (
	"fmt"
	"os"
	"path/filepath"
)

// Clip-naming conventions. Light-control confirmations are named
// {on|off}_{1|2} and latency-masking fillers wait_{1..18}; the library
// resolves these names to WAV files under its directory.
const (
	// LightVariants is the number of recorded variants per light action.
	LightVariants = 2

	// FillerVariants is the number of recorded wait_{n} filler clips.
	FillerVariants = 18
)

// Library resolves canned clip names to files under a template directory.
// The directory layout mirrors the recorded asset set: on_1.wav, on_2.wav,
// off_1.wav, off_2.wav, wait_1.wav … wait_18.wav.
type Library struct {
	dir   string
	known map[string]struct{}
}

// NewLibrary creates a Library rooted at dir. The directory is not scanned —
// clip names are validated against the fixed naming convention and missing
// files surface as errors at playback time.
func NewLibrary(dir string) *Library {
	known := make(map[string]struct{}, 2*LightVariants+FillerVariants)
	for _, action := range []string{"on", "off"} {
		for i := 1; i <= LightVariants; i++ {
			known[fmt.Sprintf("%s_%d", action, i)] = struct{}{}
		}
	}
	for i := 1; i <= FillerVariants; i++ {
		known[fmt.Sprintf("wait_%d", i)] = struct{}{}
	}
	return &Library{dir: dir, known: known}
}

// Path returns the file path for the named clip.
// Returns an error for names outside the fixed clip set.
func (l *Library) Path(name string) (string, error) {
	if _, ok := l.known[name]; !ok {
		return "", fmt.Errorf("audio: unknown clip %q", name)
	}
	return filepath.Join(l.dir, name+".wav"), nil
}

// Load reads the named clip into memory.
func (l *Library) Load(name string) ([]byte, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("audio: load clip %q: %w", name, err)
	}
	return data, nil
}

// LightClip returns the clip name for a light confirmation, e.g.
// LightClip("on", 2) == "on_2". variant must be in [1, LightVariants].
func LightClip(action string, variant int) string {
	return fmt.Sprintf("%s_%d", action, variant)
}

// FillerClip returns the clip name for a latency-masking filler, e.g.
// FillerClip(7) == "wait_7". n must be in [1, FillerVariants].
func FillerClip(n int) string {
	return fmt.Sprintf("wait_%d", n)
}
