package words

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/wordchain/internal/game"
)

const sample = `
words:
  - word: " Yield "
    category: keyword
    description: passes control to the block
  - word: yield
    category: method
  - word: Each
  - word: "true"
    category: keyword
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (duplicate dropped), got %d: %+v", len(entries), entries)
	}
	y := entries[0]
	if y.Word != "Yield" || y.Normalized != "yield" || y.Category != game.CategoryKeyword {
		t.Fatalf("unexpected first entry %+v", y)
	}
	if entries[1].Category != game.CategoryMethod {
		t.Fatalf("expected default category, got %q", entries[1].Category)
	}
	if entries[2].Word != "true" {
		t.Fatalf("expected quoted word to stay a string, got %q", entries[2].Word)
	}
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"short word":       "words:\n  - word: x\n",
		"unknown category": "words:\n  - word: xx\n    category: verb\n",
		"unknown field":    "words:\n  - word: xx\n    colour: red\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse(strings.NewReader(""))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list, got %v %v", entries, err)
	}
}

func TestDefaultVocabulary(t *testing.T) {
	v, err := Init("")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if v.Len() < 100 {
		t.Fatalf("expected embedded list, got %d words", v.Len())
	}
	ctx := context.Background()
	for _, w := range []string{"ruby", "yield", "do", "Yield"} {
		if _, ok, _ := v.Lookup(ctx, w); !ok {
			t.Errorf("expected %q in default vocabulary", w)
		}
	}
	stats := v.Stats()
	total := 0
	for _, c := range game.Categories {
		total += stats[c]
	}
	if total != v.Len() {
		t.Fatalf("stats total %d != len %d", total, v.Len())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := Init(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("expected 3 words, got %d", v.Len())
	}
	if _, err := Init(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStartingWith(t *testing.T) {
	v := New([]game.Entry{
		{Word: "Yield", Category: game.CategoryKeyword},
		{Word: "yaml", Category: game.CategoryModule},
		{Word: "each", Category: game.CategoryMethod},
	})
	ctx := context.Background()

	got, err := v.StartingWith(ctx, "Y", game.NewUsedWords("YIELD"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Word != "yaml" {
		t.Fatalf("expected only yaml, got %+v", got)
	}
	if got, _ := v.StartingWith(ctx, "z", nil); len(got) != 0 {
		t.Fatalf("expected no z words, got %+v", got)
	}
	e, ok, _ := v.Lookup(ctx, "YIELD")
	if !ok || e.Word != "Yield" {
		t.Fatalf("lookup: %+v %v", e, ok)
	}
	if entries := v.Entries(); entries[0].Normalized != "each" {
		t.Fatalf("entries not sorted: %+v", entries)
	}
}
