// Package pinyin converts mixed Chinese/Latin text into a flat sequence of
// phonetic syllable tokens for wake-word matching.
//
// Han characters romanise to toneless pinyin via github.com/mozillazg/go-pinyin,
// one token per character. Consecutive Latin letters collapse into a single
// lowercased token, so "hey muelsyse" yields ["hey", "muelsyse"]. Everything
// else — digits, punctuation, whitespace — separates tokens and produces none.
//
// Each token carries the byte span it covers in the source text, which lets
// the spotter cut a matched wake phrase out of the original string without
// re-deriving offsets.
package pinyin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Token is one phonetic syllable with its byte span in the source text.
// End is exclusive.
type Token struct {
	Syllable string
	Start    int
	End      int
}

var args = gopinyin.NewArgs()

// Normalize tokenises text into phonetic syllables. Han characters without a
// known reading are skipped.
func Normalize(text string) []Token {
	var tokens []Token

	// Pending Latin letter run.
	var run strings.Builder
	runStart := -1

	flush := func(end int) {
		if run.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{
			Syllable: run.String(),
			Start:    runStart,
			End:      end,
		})
		run.Reset()
		runStart = -1
	}

	for i, r := range text {
		size := utf8.RuneLen(r)

		if unicode.Is(unicode.Han, r) {
			flush(i)
			readings := gopinyin.SinglePinyin(r, args)
			if len(readings) > 0 {
				tokens = append(tokens, Token{
					Syllable: readings[0],
					Start:    i,
					End:      i + size,
				})
			}
			continue
		}

		if unicode.IsLetter(r) {
			if run.Len() == 0 {
				runStart = i
			}
			run.WriteRune(unicode.ToLower(r))
			continue
		}

		flush(i)
	}
	flush(len(text))

	return tokens
}
