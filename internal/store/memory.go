// internal/store/memory.go
//
// In-memory implementation of the game.SessionStore and game.TurnLog ports.
// Used for development, tests and the terminal client when durability is not
// required.
//
// Characteristics:
//   - Sessions and turn logs keyed by session ID in maps.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Optimistic checks (expected turn number, not-yet-ended) under the write lock.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/ranking"
)

// Memory is a map-based store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]game.Session
	turns    map[string][]game.Turn
	now      func() time.Time
}

var (
	_ game.SessionStore = (*Memory)(nil)
	_ game.TurnLog      = (*Memory)(nil)
)

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]game.Session),
		turns:    make(map[string][]game.Turn),
		now:      time.Now,
	}
}

// Create stores a new session with a fresh UUID.
func (m *Memory) Create(ctx context.Context, in game.NewSession) (game.Session, error) {
	if err := ctx.Err(); err != nil {
		return game.Session{}, err
	}
	s := game.Session{ID: uuid.NewString(), PlayerName: in.PlayerName, CreatedAt: in.CreatedAt}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return copySession(s), nil
}

// Get looks up a session by ID.
func (m *Memory) Get(ctx context.Context, id string) (game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return game.Session{}, game.ErrSessionNotFound
	}
	return copySession(s), nil
}

// Finish marks a session ended, once.
func (m *Memory) Finish(ctx context.Context, id string, f game.Final) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return game.ErrSessionNotFound
	}
	if s.Ended || len(m.turns[id]) != f.TurnCount {
		return game.ErrConcurrentModification
	}
	score, dur := f.Score, f.DurationSeconds
	s.Score, s.DurationSeconds = &score, &dur
	s.Ended, s.EndReason = true, f.EndReason
	m.sessions[id] = s
	return nil
}

// Append adds turns if they continue the log exactly.
func (m *Memory) Append(ctx context.Context, sessionID string, turns ...game.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return game.ErrSessionNotFound
	}
	if s.Ended {
		return game.ErrConcurrentModification
	}
	log := m.turns[sessionID]
	used := make(game.UsedWords, len(log)+len(turns))
	for _, t := range log {
		used.Add(t.Word)
	}
	for i, t := range turns {
		if t.Number != len(log)+i+1 {
			return game.ErrConcurrentModification
		}
		if used.Has(t.Word) {
			return fmt.Errorf("append turn %d: %w", t.Number, game.ErrWordAlreadyUsed)
		}
		used.Add(t.Word)
	}
	for _, t := range turns {
		t.SessionID = sessionID
		log = append(log, t)
	}
	m.turns[sessionID] = log
	return nil
}

// List returns a copy of the session's turns in order.
func (m *Memory) List(ctx context.Context, sessionID string) ([]game.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]game.Turn(nil), m.turns[sessionID]...), nil
}

// Leaderboard ranks finished sessions.
func (m *Memory) Leaderboard(ctx context.Context, q ranking.Query) ([]ranking.Row, error) {
	m.mu.RLock()
	all := make([]game.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, copySession(s))
	}
	m.mu.RUnlock()
	return ranking.Apply(all, q, m.now()), nil
}

// copySession detaches the pointer fields from the stored value.
func copySession(s game.Session) game.Session {
	if s.Score != nil {
		v := *s.Score
		s.Score = &v
	}
	if s.DurationSeconds != nil {
		v := *s.DurationSeconds
		s.DurationSeconds = &v
	}
	return s
}
