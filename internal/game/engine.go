// internal/game/engine.go
//
// Core game engine for word-chain sessions.
// Responsibilities:
//   - Start sessions and rebuild them from the persisted turn log.
//   - Validate and apply human words (chain rule, then vocabulary).
//   - Run the opponent synchronously within the same call.
//   - End games exactly once (opponent exhausted / human timeout) and store the score.
//
// Notes:
//   - A Game is rebuilt per request; nothing is kept resident between calls.
//   - Every write goes through optimistic guards in the stores, so of two
//     concurrent calls on one session at most one succeeds.
//   - Validation failures never write anything.
package game

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPlayerName is used when a player leaves the name blank.
	DefaultPlayerName = "Guest"
	// MaxPlayerNameLength is counted in characters.
	MaxPlayerNameLength = 50
)

// Engine binds the game rules to their collaborators.
type Engine struct {
	vocab     Vocabulary
	turns     TurnLog
	sessions  SessionStore
	responder *Responder
	picker    Picker
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPicker sets the opponent's random selection source.
func WithPicker(p Picker) Option {
	return func(e *Engine) { e.picker = p }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine constructs an Engine.
func NewEngine(vocab Vocabulary, turns TurnLog, sessions SessionStore, opts ...Option) *Engine {
	e := &Engine{
		vocab:    vocab,
		turns:    turns,
		sessions: sessions,
		now:      time.Now,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.responder = NewResponder(vocab, e.picker)
	return e
}

// Game is one session bound to an engine. Its fields are only set by Start
// and Rehydrate; every transition goes through the methods below.
type Game struct {
	engine  *Engine
	session Session
	state   State
}

// Start creates a new session in human_turn.
func (e *Engine) Start(ctx context.Context, playerName string) (*Game, error) {
	name, err := normalizePlayerName(playerName)
	if err != nil {
		return nil, err
	}
	sess, err := e.sessions.Create(ctx, NewSession{PlayerName: name, CreatedAt: e.now()})
	if err != nil {
		e.log.Error().Err(err).Str("player", name).Msg("create session")
		return nil, wrapError(KindSessionCreationFailed, "session creation failed", err)
	}
	e.log.Info().Str("session", sess.ID).Str("player", name).Msg("session started")
	return &Game{
		engine:  e,
		session: sess,
		state:   State{Phase: PhaseHumanTurn, Used: UsedWords{}},
	}, nil
}

// Load fetches a session and its turns and rebuilds the game.
func (e *Engine) Load(ctx context.Context, sessionID string) (*Game, error) {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := e.turns.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns for %s: %w", sessionID, err)
	}
	return e.Rehydrate(sess, turns)
}

// Rehydrate binds persisted data to the engine. See the package-level Rehydrate.
func (e *Engine) Rehydrate(sess Session, turns []Turn) (*Game, error) {
	st, err := Rehydrate(sess, turns)
	if err != nil {
		return nil, err
	}
	return &Game{engine: e, session: sess, state: st}, nil
}

// Session returns a copy of the session record.
func (g *Game) Session() Session { return g.session }

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.state.Phase }

// Snapshot is a side-effect free view of the game.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		SessionID:     g.session.ID,
		PlayerName:    g.session.PlayerName,
		Score:         g.session.Score,
		Phase:         g.state.Phase,
		LastWord:      g.state.LastWord,
		NextLetter:    g.state.NextLetter(),
		UsedWordCount: g.state.TurnCount,
		Ended:         g.state.Phase == PhaseEnded,
		EndReason:     g.state.EndReason,
	}
}

// SubmitHumanWord plays word for the human and, if accepted, lets the
// opponent answer within the same call.
func (g *Game) SubmitHumanWord(ctx context.Context, word string) (Outcome, error) {
	if g.state.Phase != PhaseHumanTurn {
		return Outcome{}, g.wrongState("submit a word")
	}
	if err := ValidateChain(word, g.state.LastWord, g.state.Used); err != nil {
		return Outcome{}, err
	}
	word = strings.TrimSpace(word)
	if _, ok, err := g.engine.vocab.Lookup(ctx, word); err != nil {
		return Outcome{}, fmt.Errorf("vocabulary lookup %q: %w", word, err)
	} else if !ok {
		return Outcome{}, newError(KindWordNotRecognized, "word is not in the vocabulary", map[string]string{"word": word})
	}

	now := g.engine.now()
	human := Turn{SessionID: g.session.ID, Number: g.state.TurnCount + 1, Word: word, Speaker: SpeakerHuman, PlayedAt: now}

	// Pick the reply before writing so both turns land in one append.
	used := make(UsedWords, len(g.state.Used)+1)
	for w := range g.state.Used {
		used[w] = struct{}{}
	}
	used.Add(word)
	reply, err := g.engine.responder.Respond(ctx, word, used)
	if err != nil {
		return Outcome{}, err
	}

	batch := []Turn{human}
	if !reply.Surrendered {
		batch = append(batch, Turn{
			SessionID: g.session.ID,
			Number:    human.Number + 1,
			Word:      reply.Entry.Word,
			Speaker:   SpeakerOpponent,
			PlayedAt:  now,
		})
	}
	if err := g.engine.turns.Append(ctx, g.session.ID, batch...); err != nil {
		return Outcome{}, err
	}
	g.apply(batch...)
	g.engine.log.Debug().Str("session", g.session.ID).Str("word", word).Int("turn", human.Number).Msg("word accepted")

	out := Outcome{Accepted: true, Word: word, Message: reply.Message}
	if reply.Surrendered {
		summary, err := g.endGame(ctx, EndOpponentExhausted)
		if err != nil {
			return Outcome{}, err
		}
		out.Surrendered = true
		out.Ended = true
		out.Summary = summary
	} else {
		out.OpponentReply = reply.Entry.Word
	}
	out.Snapshot = g.Snapshot()
	return out, nil
}

// Timeout ends the game because the human ran out of time. Only valid on the
// human's turn.
func (g *Game) Timeout(ctx context.Context) (Outcome, error) {
	if g.state.Phase != PhaseHumanTurn {
		return Outcome{}, g.wrongState("time out")
	}
	summary, err := g.endGame(ctx, EndHumanTimeout)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Ended: true, Summary: summary, Snapshot: g.Snapshot()}, nil
}

// ResumeOpponent plays the opponent's pending turn. A session only rests in
// opponent_turn when the human turn was stored but the game did not advance
// further (e.g. the final update failed).
func (g *Game) ResumeOpponent(ctx context.Context) (Outcome, error) {
	if g.state.Phase != PhaseOpponentTurn {
		return Outcome{}, g.wrongState("resume the opponent")
	}
	reply, err := g.engine.responder.Respond(ctx, g.state.LastWord, g.state.Used)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Accepted: true, Message: reply.Message}
	if reply.Surrendered {
		summary, err := g.endGame(ctx, EndOpponentExhausted)
		if err != nil {
			return Outcome{}, err
		}
		out.Surrendered, out.Ended, out.Summary = true, true, summary
		out.Snapshot = g.Snapshot()
		return out, nil
	}
	t := Turn{
		SessionID: g.session.ID,
		Number:    g.state.TurnCount + 1,
		Word:      reply.Entry.Word,
		Speaker:   SpeakerOpponent,
		PlayedAt:  g.engine.now(),
	}
	if err := g.engine.turns.Append(ctx, g.session.ID, t); err != nil {
		return Outcome{}, err
	}
	g.apply(t)
	out.OpponentReply = t.Word
	out.Snapshot = g.Snapshot()
	return out, nil
}

// endGame scores the game and stores the result. It runs at most once per
// session: the store rejects a second Finish.
func (g *Game) endGame(ctx context.Context, reason EndReason) (*Summary, error) {
	duration := int(g.engine.now().Sub(g.session.CreatedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	sc, err := CalculateScore(g.state.TurnCount, float64(duration))
	if err != nil {
		return nil, err
	}
	final := Final{Score: sc.Points, DurationSeconds: duration, EndReason: reason, TurnCount: g.state.TurnCount}
	if err := g.engine.sessions.Finish(ctx, g.session.ID, final); err != nil {
		g.engine.log.Error().Err(err).Str("session", g.session.ID).Msg("finish session")
		return nil, err
	}

	g.session.Ended = true
	g.session.EndReason = reason
	g.session.Score = &final.Score
	g.session.DurationSeconds = &final.DurationSeconds
	g.state.Phase = PhaseEnded
	g.state.EndReason = reason

	g.engine.log.Info().
		Str("session", g.session.ID).
		Str("reason", string(reason)).
		Int("score", sc.Points).
		Int("turns", g.state.TurnCount).
		Int("duration_s", duration).
		Msg("game over")

	return &Summary{
		Reason:          reason,
		Score:           sc.Points,
		TimeBonus:       sc.TimeBonus,
		DurationSeconds: duration,
		TurnCount:       g.state.TurnCount,
	}, nil
}

// apply folds appended turns into the in-memory state.
func (g *Game) apply(turns ...Turn) {
	for _, t := range turns {
		g.state.Words = append(g.state.Words, t.Word)
		g.state.Used.Add(t.Word)
		g.state.LastWord = t.Word
		g.state.TurnCount++
	}
	if g.state.TurnCount%2 == 1 {
		g.state.Phase = PhaseOpponentTurn
	} else {
		g.state.Phase = PhaseHumanTurn
	}
}

func (g *Game) wrongState(op string) error {
	return newError(KindWrongTurnState,
		fmt.Sprintf("cannot %s during %s", op, g.state.Phase),
		map[string]string{"state": string(g.state.Phase)})
}

// normalizePlayerName trims the name, defaults blanks and rejects names that
// are too long or contain anything but letters, digits, spaces and "ー".
func normalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName, nil
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return "", newError(KindInvalidPlayerName, "player name must be at most 50 characters", nil)
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == 'ー') {
			return "", newError(KindInvalidPlayerName, "player name may only contain letters, digits and spaces", nil)
		}
	}
	return name, nil
}
