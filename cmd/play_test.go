package cmd

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/config"
	"github.com/robalobadob/wordchain/internal/game"
)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

func memoryConfig() config.Config {
	return config.Config{StorageBackend: config.BackendMemory, TimeLimit: 10 * time.Second}
}

func newPlayer(t *testing.T, input string, step time.Duration) (*player, *bytes.Buffer) {
	t.Helper()
	be, err := openBackend(context.Background(), memoryConfig(), game.WithPicker(firstPicker{}), game.WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { _ = be.close() })

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	return &player{
		engine: be.engine,
		in:     bufio.NewScanner(strings.NewReader(input)),
		out:    &out,
		limit:  10 * time.Second,
		now: func() time.Time {
			clock = clock.Add(step)
			return clock
		},
	}, &out
}

func TestPlayEndsOnEOF(t *testing.T) {
	p, out := newPlayer(t, "ruby\nxx\n", time.Second)
	if err := p.run(context.Background(), "Alice"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Welcome, Alice!", "computer:", "Game over (human_timeout)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestPlaySlowAnswerTimesOut(t *testing.T) {
	p, out := newPlayer(t, "ruby\n", 11*time.Second)
	if err := p.run(context.Background(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Too slow!") || !strings.Contains(got, "Game over (human_timeout)") {
		t.Fatalf("expected timeout, got:\n%s", got)
	}
	if strings.Contains(got, "computer:") {
		t.Fatalf("late word must not be played:\n%s", got)
	}
}

func TestVocabStatsMemory(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetArgs([]string{"vocab", "stats", "--storage", "memory"})
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("vocab stats: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"Vocabulary", "keyword", "total"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}
