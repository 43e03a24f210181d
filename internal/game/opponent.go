// internal/game/opponent.go
//
// The automated opponent. It answers with a random unused vocabulary word that
// starts with the required letter, or surrenders when there is none.

package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// Reply is the opponent's answer. Exactly one of Entry / Surrendered is meaningful.
type Reply struct {
	Entry       Entry
	Surrendered bool
	Letter      string
	Message     string
}

// Responder selects opponent words.
type Responder struct {
	vocab  Vocabulary
	picker Picker
}

// NewResponder builds a Responder. A nil picker means a crypto-seeded PCG.
func NewResponder(vocab Vocabulary, picker Picker) *Responder {
	if picker == nil {
		picker = NewRandomPicker()
	}
	return &Responder{vocab: vocab, picker: picker}
}

// Respond answers previous. Surrender is terminal, not an error.
func (r *Responder) Respond(ctx context.Context, previous string, used UsedWords) (Reply, error) {
	letter := RequiredStartLetter(previous)
	found, err := r.vocab.StartingWith(ctx, letter, used)
	if err != nil {
		return Reply{}, fmt.Errorf("opponent candidates for %q: %w", letter, err)
	}

	// Never repeat a used word, whatever the oracle returned.
	candidates := make([]Entry, 0, len(found))
	for _, e := range found {
		if !used.Has(e.Word) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Reply{
			Surrendered: true,
			Letter:      letter,
			Message:     fmt.Sprintf("the opponent could not think of a word starting with %q, you win", letter),
		}, nil
	}
	pick := candidates[r.picker.IntN(len(candidates))]
	return Reply{Entry: pick, Letter: letter}, nil
}

// lockedPicker makes a *rand.Rand safe to share between requests.
type lockedPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (p *lockedPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// NewRandomPicker returns a uniform picker seeded from crypto/rand.
func NewRandomPicker() Picker {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms; fall back to the runtime source.
		return &lockedPicker{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	seed1 := binary.LittleEndian.Uint64(b[:8])
	seed2 := binary.LittleEndian.Uint64(b[8:])
	return &lockedPicker{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSeededPicker returns a deterministic picker.
func NewSeededPicker(seed uint64) Picker {
	return &lockedPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
