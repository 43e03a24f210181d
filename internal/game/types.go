// internal/game/types.go
//
// Core type definitions for the word-chain game engine.
// Defines:
//   - Speaker, Phase, EndReason: closed enums used by the state machine.
//   - Session: the persisted game record (owned by the engine).
//   - Turn: one immutable entry of the ordered turn log.
//   - Entry: a vocabulary word as seen by the engine (read-only).
//   - Snapshot, Outcome, Summary: results handed back to callers.

package game

import "time"

// Speaker identifies who played a turn.
type Speaker string

const (
	SpeakerHuman    Speaker = "human"
	SpeakerOpponent Speaker = "opponent"
)

// Phase is the coarse state of a session.
//   - awaiting_start: no session record exists yet.
//   - human_turn:     the human must answer (or time out).
//   - opponent_turn:  the opponent must answer.
//   - ended:          terminal; see EndReason.
type Phase string

const (
	PhaseAwaitingStart Phase = "awaiting_start"
	PhaseHumanTurn     Phase = "human_turn"
	PhaseOpponentTurn  Phase = "opponent_turn"
	PhaseEnded         Phase = "ended"
)

// EndReason records why a session ended. Empty while the game is running.
type EndReason string

const (
	EndOpponentExhausted EndReason = "opponent_exhausted"
	EndHumanTimeout      EndReason = "human_timeout"
)

// Valid reports whether r is one of the known end reasons.
func (r EndReason) Valid() bool {
	return r == EndOpponentExhausted || r == EndHumanTimeout
}

// Session is the persisted record of one game.
// Score and DurationSeconds stay nil until the game is over.
type Session struct {
	ID              string    `json:"id"`
	PlayerName      string    `json:"playerName"`
	CreatedAt       time.Time `json:"createdAt"`
	Score           *int      `json:"score,omitempty"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	Ended           bool      `json:"ended"`
	EndReason       EndReason `json:"endReason,omitempty"`
}

// NewSession is the input to SessionStore.Create.
type NewSession struct {
	PlayerName string
	CreatedAt  time.Time
}

// Final is the terminal update written once per session.
// TurnCount is the number of turns the score was computed from; stores use it
// as an optimistic guard against turns appended concurrently.
type Final struct {
	Score           int
	DurationSeconds int
	EndReason       EndReason
	TurnCount       int
}

// Turn is one entry of a session's turn log. Number starts at 1 and is contiguous.
type Turn struct {
	SessionID string    `json:"sessionId"`
	Number    int       `json:"number"`
	Word      string    `json:"word"`
	Speaker   Speaker   `json:"speaker"`
	PlayedAt  time.Time `json:"playedAt"`
}

// Category tags a vocabulary entry.
type Category string

const (
	CategoryMethod  Category = "method"
	CategoryKeyword Category = "keyword"
	CategoryClass   Category = "class"
	CategoryModule  Category = "module"
	CategoryGem     Category = "gem"
)

// Categories lists every accepted category.
var Categories = []Category{CategoryMethod, CategoryKeyword, CategoryClass, CategoryModule, CategoryGem}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Entry is a vocabulary word. Normalized is the case-folded form used for lookups.
type Entry struct {
	Word        string   `json:"word" yaml:"word"`
	Normalized  string   `json:"normalized" yaml:"-"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Snapshot is a read-only view of a session for callers.
type Snapshot struct {
	SessionID     string    `json:"sessionId"`
	PlayerName    string    `json:"playerName"`
	Score         *int      `json:"score"`
	Phase         Phase     `json:"state"`
	LastWord      string    `json:"lastWord,omitempty"`
	NextLetter    string    `json:"nextLetter,omitempty"`
	UsedWordCount int       `json:"usedWordCount"`
	Ended         bool      `json:"ended"`
	EndReason     EndReason `json:"endReason,omitempty"`
}

// Summary describes a finished game.
type Summary struct {
	Reason          EndReason `json:"reason"`
	Score           int       `json:"score"`
	TimeBonus       float64   `json:"timeBonus"`
	DurationSeconds int       `json:"durationSeconds"`
	TurnCount       int       `json:"turnCount"`
}

// Outcome is the result of a turn-advancing operation.
type Outcome struct {
	Accepted      bool     `json:"accepted"`
	Word          string   `json:"word,omitempty"`
	OpponentReply string   `json:"opponentReply,omitempty"`
	Surrendered   bool     `json:"surrendered,omitempty"`
	Message       string   `json:"message,omitempty"`
	Ended         bool     `json:"ended"`
	Summary       *Summary `json:"summary,omitempty"`
	Snapshot      Snapshot `json:"game"`
}
