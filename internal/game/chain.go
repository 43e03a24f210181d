// internal/game/chain.go
//
// The word-chain rule: which letter the next word must start with, and the
// shape/uniqueness/chain checks a candidate must pass. Vocabulary membership
// is checked separately by the engine.

package game

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MinWordLength is the minimum number of characters in a playable word.
const MinWordLength = 2

// Normalize trims and case-folds a word. All comparisons in the engine and
// the stores go through this form.
func Normalize(word string) string {
	// cases.Caser is stateful; one per call.
	return cases.Fold().String(strings.TrimSpace(word))
}

// UsedWords is the set of normalized words already played in a session.
type UsedWords map[string]struct{}

// NewUsedWords builds a set from raw words.
func NewUsedWords(words ...string) UsedWords {
	u := make(UsedWords, len(words))
	for _, w := range words {
		u.Add(w)
	}
	return u
}

// Add records w (normalized).
func (u UsedWords) Add(w string) { u[Normalize(w)] = struct{}{} }

// Has reports whether w (in any case) was already played.
func (u UsedWords) Has(w string) bool {
	_, ok := u[Normalize(w)]
	return ok
}

// List returns the normalized words in no particular order.
func (u UsedWords) List() []string {
	out := make([]string, 0, len(u))
	for w := range u {
		out = append(out, w)
	}
	return out
}

// RequiredStartLetter returns the letter the word after `word` must begin with:
// the last alphabetic character of word, case-folded. Trailing punctuation is
// skipped ("class?" -> "s"). A word without any letter yields its last
// character; an empty word yields "".
func RequiredStartLetter(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	for i := len(word); i > 0; {
		r, size := utf8.DecodeLastRuneInString(word[:i])
		if unicode.IsLetter(r) {
			return foldRune(r)
		}
		i -= size
	}
	r, _ := utf8.DecodeLastRuneInString(word)
	return foldRune(r)
}

// ValidateChain checks candidate against the chain rules, in this order:
// length, uniqueness, starting letter. previous is "" on the first turn.
func ValidateChain(candidate, previous string, used UsedWords) error {
	norm := Normalize(candidate)
	if utf8.RuneCountInString(norm) < MinWordLength {
		return newError(KindWordTooShort, "word must be at least 2 characters", nil)
	}
	if used.Has(norm) {
		return newError(KindWordAlreadyUsed, "word already used", map[string]string{"word": norm})
	}
	if strings.TrimSpace(previous) == "" {
		return nil
	}
	want := RequiredStartLetter(previous)
	first, _ := utf8.DecodeRuneInString(norm)
	if foldRune(first) != want {
		return newError(KindWrongStartingLetter, "word must start with "+want, map[string]string{"letter": want})
	}
	return nil
}

// foldRune case-folds a single rune and keeps only the first resulting rune,
// so multi-rune foldings (ß -> ss) still compare against a word's first rune.
func foldRune(r rune) string {
	f := cases.Fold().String(string(r))
	first, _ := utf8.DecodeRuneInString(f)
	return string(first)
}
