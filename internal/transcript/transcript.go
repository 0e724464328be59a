// Package transcript normalises raw speech-to-text output before wake-word
// spotting.
//
// SenseVoice-family models interleave metadata markup with the recognised
// text, e.g. "<|zh|><|NEUTRAL|><|Speech|><|woitn|>请打开灯". Cleanup removes
// every such tag and trims surrounding whitespace; everything between tags is
// preserved verbatim, including inner whitespace and punctuation.
package transcript

import (
	"regexp"
	"strings"
)

// tagPattern matches one "<|...|>" markup tag, non-greedy so adjacent tags
// are removed individually rather than as one span.
var tagPattern = regexp.MustCompile(`<\|.*?\|>`)

// Clean strips recognition markup tags from raw STT output and trims leading
// and trailing whitespace. A transcript consisting only of tags cleans to the
// empty string.
func Clean(raw string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
}
