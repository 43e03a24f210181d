package game

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable class of a game error. The set is closed:
// callers can switch over it exhaustively.
type Kind string

const (
	KindWordTooShort           Kind = "word_too_short"
	KindWordAlreadyUsed        Kind = "word_already_used"
	KindWrongStartingLetter    Kind = "wrong_starting_letter"
	KindWordNotRecognized      Kind = "word_not_recognized"
	KindInvalidPlayerName      Kind = "invalid_player_name"
	KindWrongTurnState         Kind = "wrong_turn_state"
	KindSessionNotFound        Kind = "session_not_found"
	KindSessionCreationFailed  Kind = "session_creation_failed"
	KindConcurrentModification Kind = "concurrent_modification"
)

// Class groups kinds by how a caller should react.
type Class string

const (
	ClassValidation Class = "validation"
	ClassState      Class = "state"
	ClassLookup     Class = "lookup"
	ClassInfra      Class = "infra"
)

// Class returns the group k belongs to.
func (k Kind) Class() Class {
	switch k {
	case KindWordTooShort, KindWordAlreadyUsed, KindWrongStartingLetter, KindWordNotRecognized, KindInvalidPlayerName:
		return ClassValidation
	case KindWrongTurnState:
		return ClassState
	case KindSessionNotFound:
		return ClassLookup
	default:
		return ClassInfra
	}
}

// Retryable reports whether the whole operation may be retried.
// Only ConcurrentModification requires re-fetching the snapshot first.
func (k Kind) Retryable() bool {
	return k == KindSessionCreationFailed || k == KindConcurrentModification
}

// Error is the engine's error type.
type Error struct {
	Kind    Kind
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrWordTooShort           = &Error{Kind: KindWordTooShort, Message: "word must be at least 2 characters"}
	ErrWordAlreadyUsed        = &Error{Kind: KindWordAlreadyUsed, Message: "word already used"}
	ErrWrongStartingLetter    = &Error{Kind: KindWrongStartingLetter, Message: "word starts with the wrong letter"}
	ErrWordNotRecognized      = &Error{Kind: KindWordNotRecognized, Message: "word is not in the vocabulary"}
	ErrInvalidPlayerName      = &Error{Kind: KindInvalidPlayerName, Message: "invalid player name"}
	ErrWrongTurnState         = &Error{Kind: KindWrongTurnState, Message: "operation not allowed in current state"}
	ErrSessionNotFound        = &Error{Kind: KindSessionNotFound, Message: "session not found"}
	ErrSessionCreationFailed  = &Error{Kind: KindSessionCreationFailed, Message: "session creation failed"}
	ErrConcurrentModification = &Error{Kind: KindConcurrentModification, Message: "session was modified concurrently"}
)

// ErrCorruptTurnLog is returned by Rehydrate when persisted turns are not a valid log.
var ErrCorruptTurnLog = errors.New("corrupt turn log")

func newError(kind Kind, msg string, meta map[string]string) *Error {
	return &Error{Kind: kind, Message: msg, Meta: meta}
}

func wrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf extracts the Kind from err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
