package game

import "context"

// Vocabulary is the word oracle the engine consults.
type Vocabulary interface {
	// Lookup returns the entry for word (any case), or ok=false.
	Lookup(ctx context.Context, word string) (entry Entry, ok bool, err error)

	// StartingWith returns entries whose normalized form starts with letter,
	// excluding every word in exclude. Order is unspecified.
	StartingWith(ctx context.Context, letter string, exclude UsedWords) ([]Entry, error)
}

// TurnLog is the append-only, ordered turn history of each session.
type TurnLog interface {
	// Append adds turns atomically. turns[0].Number must equal the current
	// turn count + 1; otherwise the store returns ErrConcurrentModification
	// and nothing is written.
	Append(ctx context.Context, sessionID string, turns ...Turn) error

	// List returns the session's turns ordered by Number.
	List(ctx context.Context, sessionID string) ([]Turn, error)
}

// SessionStore persists session records.
type SessionStore interface {
	Create(ctx context.Context, in NewSession) (Session, error)

	// Get returns ErrSessionNotFound for unknown ids.
	Get(ctx context.Context, id string) (Session, error)

	// Finish marks the session ended. It returns ErrConcurrentModification if
	// the session already ended or its turn count differs from f.TurnCount.
	Finish(ctx context.Context, id string, f Final) error
}
