// internal/words/words.go
//
// Vocabulary management for the game engine.
//
// Responsibilities:
//   - Parse YAML word lists (word, category, description).
//   - Normalize entries (trim, case-fold) and reject unplayable ones.
//   - Serve an in-memory game.Vocabulary indexed by first letter.
//
// Word list format:
//
//	words:
//	  - word: yield
//	    category: keyword
//	    description: passes control to the block
//
// Initialization behavior (Init):
//  1. If a path is given (WORDS_FILE), load that file.
//  2. Otherwise fall back to the embedded default list (assets/vocabulary.yaml),
//     parsed once (sync.Once).

package words

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordchain/assets"
	"github.com/robalobadob/wordchain/internal/game"
)

// File is the on-disk shape of a word list.
type File struct {
	Words []game.Entry `yaml:"words"`
}

var (
	defaultOnce    sync.Once
	defaultEntries []game.Entry
	defaultErr     error
)

// Default returns the embedded word list.
func Default() ([]game.Entry, error) {
	defaultOnce.Do(func() {
		raw, err := assets.DefaultVocabulary()
		if err != nil {
			defaultErr = err
			return
		}
		defaultEntries, defaultErr = Parse(strings.NewReader(string(raw)))
	})
	return defaultEntries, defaultErr
}

// LoadFile reads a YAML word list from path.
func LoadFile(path string) ([]game.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes and normalizes a YAML word list. Later duplicates (same
// normalized form) are dropped.
func Parse(r io.Reader) ([]game.Entry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode word list: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Words))
	out := make([]game.Entry, 0, len(f.Words))
	for i, e := range f.Words {
		n, err := NormalizeEntry(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if _, dup := seen[n.Normalized]; dup {
			continue
		}
		seen[n.Normalized] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// NormalizeEntry trims the word, fills Normalized and defaults the category
// to "method". Words shorter than game.MinWordLength are rejected.
func NormalizeEntry(e game.Entry) (game.Entry, error) {
	e.Word = strings.TrimSpace(e.Word)
	e.Normalized = game.Normalize(e.Word)
	e.Description = strings.TrimSpace(e.Description)
	if utf8.RuneCountInString(e.Normalized) < game.MinWordLength {
		return game.Entry{}, fmt.Errorf("word %q is shorter than %d characters", e.Word, game.MinWordLength)
	}
	if e.Category == "" {
		e.Category = game.CategoryMethod
	}
	if !e.Category.Valid() {
		return game.Entry{}, fmt.Errorf("word %q: unknown category %q", e.Word, e.Category)
	}
	return e, nil
}

// FirstLetter is the index key of a normalized word.
func FirstLetter(normalized string) string {
	r, _ := utf8.DecodeRuneInString(normalized)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// Vocabulary is an immutable in-memory game.Vocabulary.
type Vocabulary struct {
	byWord   map[string]game.Entry
	byLetter map[string][]game.Entry
}

var _ game.Vocabulary = (*Vocabulary)(nil)

// New indexes entries. Entries are expected to be normalized (see Parse).
func New(entries []game.Entry) *Vocabulary {
	v := &Vocabulary{
		byWord:   make(map[string]game.Entry, len(entries)),
		byLetter: make(map[string][]game.Entry),
	}
	for _, e := range entries {
		if e.Normalized == "" {
			e.Normalized = game.Normalize(e.Word)
		}
		if _, dup := v.byWord[e.Normalized]; dup {
			continue
		}
		v.byWord[e.Normalized] = e
		k := FirstLetter(e.Normalized)
		v.byLetter[k] = append(v.byLetter[k], e)
	}
	return v
}

// Init loads the word list at path, or the embedded default when path is empty.
func Init(path string) (*Vocabulary, error) {
	var (
		entries []game.Entry
		err     error
	)
	if path != "" {
		entries, err = LoadFile(path)
	} else {
		entries, err = Default()
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("words: word list is empty")
	}
	return New(entries), nil
}

// Lookup implements game.Vocabulary.
func (v *Vocabulary) Lookup(_ context.Context, word string) (game.Entry, bool, error) {
	e, ok := v.byWord[game.Normalize(word)]
	return e, ok, nil
}

// StartingWith implements game.Vocabulary.
func (v *Vocabulary) StartingWith(_ context.Context, letter string, exclude game.UsedWords) ([]game.Entry, error) {
	list := v.byLetter[FirstLetter(game.Normalize(letter))]
	out := make([]game.Entry, 0, len(list))
	for _, e := range list {
		if _, used := exclude[e.Normalized]; used {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Len returns the number of words.
func (v *Vocabulary) Len() int { return len(v.byWord) }

// Entries returns all entries sorted by normalized word.
func (v *Vocabulary) Entries() []game.Entry {
	out := make([]game.Entry, 0, len(v.byWord))
	for _, e := range v.byWord {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Normalized < out[j].Normalized })
	return out
}

// Stats counts words per category.
func (v *Vocabulary) Stats() map[game.Category]int {
	out := make(map[game.Category]int, len(game.Categories))
	for _, e := range v.byWord {
		out[e.Category]++
	}
	return out
}
