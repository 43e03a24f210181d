package game

import (
	"fmt"
	"strings"
)

// State is everything the engine knows about a session, derived from the
// persisted Session and its turn log. It has no other source of truth.
type State struct {
	Phase     Phase
	EndReason EndReason
	Words     []string // in turn order, as recorded
	Used      UsedWords
	LastWord  string
	TurnCount int
}

// NextLetter is the letter the next word must start with ("" before the first turn).
func (s State) NextLetter() string {
	if s.LastWord == "" {
		return ""
	}
	return RequiredStartLetter(s.LastWord)
}

// Rehydrate rebuilds State from a session record and its turns.
//
// Phase rule: an ended session is ended regardless of turn count. Otherwise,
// with strict human/opponent alternation starting with the human, zero or an
// even number of turns means human_turn and an odd number means opponent_turn.
//
// Turns must be ordered, contiguous from 1 and belong to the session.
func Rehydrate(sess Session, turns []Turn) (State, error) {
	st := State{
		Words:     make([]string, 0, len(turns)),
		Used:      make(UsedWords, len(turns)),
		TurnCount: len(turns),
	}
	for i, t := range turns {
		if t.Number != i+1 {
			return State{}, fmt.Errorf("%w: session %s: turn %d at position %d", ErrCorruptTurnLog, sess.ID, t.Number, i+1)
		}
		if t.SessionID != "" && t.SessionID != sess.ID {
			return State{}, fmt.Errorf("%w: turn %d belongs to session %s", ErrCorruptTurnLog, t.Number, t.SessionID)
		}
		if strings.TrimSpace(t.Word) == "" {
			return State{}, fmt.Errorf("%w: session %s: turn %d has no word", ErrCorruptTurnLog, sess.ID, t.Number)
		}
		st.Words = append(st.Words, t.Word)
		st.Used.Add(t.Word)
		st.LastWord = t.Word
	}

	switch {
	case sess.Ended:
		st.Phase = PhaseEnded
		st.EndReason = sess.EndReason
	case len(turns)%2 == 1:
		st.Phase = PhaseOpponentTurn
	default:
		st.Phase = PhaseHumanTurn
	}
	return st, nil
}
