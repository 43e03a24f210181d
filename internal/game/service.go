package game

import "context"

// The methods below are the operations the transport layer calls. Each one
// rebuilds the session from storage, applies one transition and returns; no
// session is kept in memory between calls.

// CreateSession starts a game and returns its first snapshot.
func (e *Engine) CreateSession(ctx context.Context, playerName string) (Snapshot, error) {
	g, err := e.Start(ctx, playerName)
	if err != nil {
		return Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// GetState returns the current snapshot of a session.
func (e *Engine) GetState(ctx context.Context, sessionID string) (Snapshot, error) {
	g, err := e.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// SubmitWord plays a human word and the opponent's answer.
func (e *Engine) SubmitWord(ctx context.Context, sessionID, word string) (Outcome, error) {
	g, err := e.Load(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return g.SubmitHumanWord(ctx, word)
}

// SignalTimeout ends the session because the human ran out of time.
func (e *Engine) SignalTimeout(ctx context.Context, sessionID string) (Outcome, error) {
	g, err := e.Load(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return g.Timeout(ctx)
}

// ResumeOpponent plays a pending opponent turn.
func (e *Engine) ResumeOpponent(ctx context.Context, sessionID string) (Outcome, error) {
	g, err := e.Load(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	return g.ResumeOpponent(ctx)
}
