// Package wake spots the assistant's wake phrase in a cleaned transcript and
// extracts the command that surrounds it.
//
// Two detection paths run in order. The literal path looks for the spelled
// name "muelsyse" (any letter case) anywhere in the text — cheap, exact, and
// common for English transcripts. The phonetic path romanises the text into
// pinyin syllables and fuzzy-matches sliding windows against a fixed set of
// wake patterns with Levenshtein distance, which absorbs the homophone
// substitutions speech recognisers make for names ("缪尔赛思" heard as
// "谬二塞斯" and similar).
package wake

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/DuoDuoJuZi/Myurujisu/internal/wake/pinyin"
)

// literalName is the spelled form of the wake word the literal path scans for.
const literalName = "muelsyse"

// distanceBudget is the fraction of the pattern string length allowed as
// Levenshtein distance on the phonetic path. 0.35 tolerates roughly one
// substituted syllable per pattern without matching unrelated speech.
const distanceBudget = 0.35

// defaultPatterns are the phonetic wake forms in priority order: the full
// name first, then its common truncations, then the doubled pet form. The
// first pattern with a qualifying window wins; within a pattern the leftmost
// qualifying window wins.
var defaultPatterns = [][]string{
	{"miu", "er", "sai", "si"},
	{"miu", "er"},
	{"sai", "si"},
	{"miu", "miu"},
}

// residualCutset are the characters trimmed from both ends of the command
// after the wake phrase is cut out: whitespace plus ASCII and CJK sentence
// punctuation.
const residualCutset = " \t\r\n.,!?;:'\"、。，！？；：“”‘’"

// Result describes one spotting outcome.
type Result struct {
	// Matched reports whether a wake phrase was found.
	Matched bool

	// Literal is true when the spelled name matched; false for phonetic
	// matches.
	Literal bool

	// Pattern is the phonetic pattern that matched; nil for literal matches.
	Pattern []string

	// Distance is the Levenshtein distance of the matched window; 0 for
	// literal matches.
	Distance int

	// Command is the text to classify: the original text with the wake
	// phrase removed and punctuation trimmed. When nothing remains after
	// removal, Command is the full original text so the classifier still
	// has something to react to. When Matched is false, Command is the
	// unmodified input; callers must not dispatch it.
	Command string
}

// Spotter runs the two detection paths over transcripts. The pattern set is
// fixed at construction and stays constant for the process lifetime.
type Spotter struct {
	patterns [][]string
}

// Option configures a [Spotter].
type Option func(*Spotter)

// WithPatterns replaces the built-in phonetic pattern set. Patterns are
// tried in the order given.
func WithPatterns(patterns [][]string) Option {
	return func(s *Spotter) {
		s.patterns = patterns
	}
}

// NewSpotter creates a spotter with the built-in pattern set unless
// overridden.
func NewSpotter(opts ...Option) *Spotter {
	s := &Spotter{patterns: defaultPatterns}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSpotter = NewSpotter()

// Spot scans text for the wake phrase using the built-in pattern set.
func Spot(text string) Result {
	return defaultSpotter.Spot(text)
}

// Spot scans text for the wake phrase.
func (s *Spotter) Spot(text string) Result {
	if res, ok := spotLiteral(text); ok {
		return res
	}
	return s.spotPhonetic(text)
}

// spotLiteral finds the first occurrence of the spelled name, ignoring ASCII
// letter case. Lowercasing is restricted to A–Z so byte offsets in the
// folded string are valid in the original.
func spotLiteral(text string) (Result, bool) {
	folded := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, text)

	idx := strings.Index(folded, literalName)
	if idx < 0 {
		return Result{}, false
	}

	return Result{
		Matched: true,
		Literal: true,
		Command: residual(text, idx, idx+len(literalName)),
	}, true
}

// spotPhonetic romanises the text and slides each pattern across the
// syllable sequence, comparing concatenated syllables by Levenshtein
// distance against a per-pattern budget.
func (s *Spotter) spotPhonetic(text string) Result {
	tokens := pinyin.Normalize(text)
	if len(tokens) == 0 {
		return Result{Command: text}
	}

	for _, pattern := range s.patterns {
		target := strings.Join(pattern, "")
		budget := int(math.Floor(distanceBudget * float64(len(target))))

		for start := 0; start+len(pattern) <= len(tokens); start++ {
			window := tokens[start : start+len(pattern)]
			var joined strings.Builder
			for _, tok := range window {
				joined.WriteString(tok.Syllable)
			}

			dist := matchr.Levenshtein(joined.String(), target)
			if dist > budget {
				continue
			}

			return Result{
				Matched:  true,
				Pattern:  pattern,
				Distance: dist,
				Command:  residual(text, window[0].Start, window[len(window)-1].End),
			}
		}
	}

	return Result{Command: text}
}

// residual cuts the byte span [start, end) out of text, joins the remainder,
// and trims surrounding punctuation and whitespace. An empty remainder falls
// back to the untrimmed original text.
func residual(text string, start, end int) string {
	rest := strings.Trim(text[:start]+text[end:], residualCutset)
	if rest == "" {
		return text
	}
	return rest
}
