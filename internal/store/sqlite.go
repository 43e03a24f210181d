// internal/store/sqlite.go
//
// SQLite implementation of the game ports (sessions, turn log, vocabulary).
//
// Notes:
//   - Timestamps are stored as fixed-width UTC strings (timeLayout) so that
//     ORDER BY / range filters on TEXT columns sort chronologically.
//   - Append and Finish run read-check-write inside one immediate transaction;
//     unique-constraint violations are reported as concurrent modifications.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/words"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is a durable store backed by a single database file.
type SQLite struct {
	db *sql.DB
}

var (
	_ game.SessionStore = (*SQLite)(nil)
	_ game.TurnLog      = (*SQLite)(nil)
	_ game.Vocabulary   = (*SQLite)(nil)
)

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// DB exposes the handle (for ranking.Store).
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// ------------------------------- sessions ----------------------------------

// Create inserts a new session row.
func (s *SQLite) Create(ctx context.Context, in game.NewSession) (game.Session, error) {
	sess := game.Session{ID: uuid.NewString(), PlayerName: in.PlayerName, CreatedAt: in.CreatedAt.UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, player_name, created_at) VALUES (?, ?, ?)`,
		sess.ID, sess.PlayerName, sess.CreatedAt.Format(timeLayout))
	if err != nil {
		return game.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get loads a session row.
func (s *SQLite) Get(ctx context.Context, id string) (game.Session, error) {
	var (
		sess    game.Session
		created string
		score   sql.NullInt64
		dur     sql.NullInt64
		reason  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, player_name, created_at, score, duration_seconds, ended, end_reason
        FROM sessions WHERE id=?`, id,
	).Scan(&sess.ID, &sess.PlayerName, &created, &score, &dur, &sess.Ended, &reason)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Session{}, game.ErrSessionNotFound
	}
	if err != nil {
		return game.Session{}, fmt.Errorf("select session %s: %w", id, err)
	}
	sess.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return game.Session{}, fmt.Errorf("session %s: bad created_at %q: %w", id, created, err)
	}
	if score.Valid {
		v := int(score.Int64)
		sess.Score = &v
	}
	if dur.Valid {
		v := int(dur.Int64)
		sess.DurationSeconds = &v
	}
	sess.EndReason = game.EndReason(reason.String)
	return sess, nil
}

// Finish stores the final result if the session is still running and its
// turn count matches.
func (s *SQLite) Finish(ctx context.Context, id string, f game.Final) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ended, count, err := sessionStatus(ctx, tx, id)
	if err != nil {
		return err
	}
	if ended || count != f.TurnCount {
		return game.ErrConcurrentModification
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE sessions SET score=?, duration_seconds=?, ended=1, end_reason=?
        WHERE id=? AND ended=0`,
		f.Score, f.DurationSeconds, string(f.EndReason), id); err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return tx.Commit()
}

// ------------------------------- turn log ----------------------------------

// Append inserts turns after checking they continue the log.
func (s *SQLite) Append(ctx context.Context, sessionID string, turns ...game.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ended, count, err := sessionStatus(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if ended {
		return game.ErrConcurrentModification
	}
	for i, t := range turns {
		if t.Number != count+i+1 {
			return game.ErrConcurrentModification
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO turns (session_id, turn_number, word, normalized_word, speaker, played_at)
            VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, t.Number, t.Word, game.Normalize(t.Word), string(t.Speaker), t.PlayedAt.UTC().Format(timeLayout))
		if err != nil {
			return mapConstraint(err, t)
		}
	}
	return tx.Commit()
}

// List returns the session's turns ordered by turn number.
func (s *SQLite) List(ctx context.Context, sessionID string) ([]game.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT turn_number, word, speaker, played_at
        FROM turns WHERE session_id=? ORDER BY turn_number ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []game.Turn
	for rows.Next() {
		t := game.Turn{SessionID: sessionID}
		var speaker, played string
		if err := rows.Scan(&t.Number, &t.Word, &speaker, &played); err != nil {
			return nil, err
		}
		t.Speaker = game.Speaker(speaker)
		t.PlayedAt, _ = time.Parse(timeLayout, played)
		out = append(out, t)
	}
	return out, rows.Err()
}

// sessionStatus reads the ended flag and current turn count inside tx.
func sessionStatus(ctx context.Context, tx *sql.Tx, id string) (ended bool, count int, err error) {
	err = tx.QueryRowContext(ctx, `
        SELECT ended, (SELECT COUNT(1) FROM turns WHERE session_id = sessions.id)
        FROM sessions WHERE id=?`, id).Scan(&ended, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, game.ErrSessionNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("session status %s: %w", id, err)
	}
	return ended, count, nil
}

// mapConstraint turns unique/primary-key violations into engine errors.
func mapConstraint(err error, t game.Turn) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return game.ErrConcurrentModification
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("append turn %d: %w", t.Number, game.ErrWordAlreadyUsed)
		}
	}
	return fmt.Errorf("insert turn %d: %w", t.Number, err)
}

// ------------------------------ vocabulary ---------------------------------

// Lookup implements game.Vocabulary.
func (s *SQLite) Lookup(ctx context.Context, word string) (game.Entry, bool, error) {
	var e game.Entry
	var category string
	err := s.db.QueryRowContext(ctx, `
        SELECT word, normalized_word, category, description
        FROM words WHERE normalized_word=?`, game.Normalize(word),
	).Scan(&e.Word, &e.Normalized, &category, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Entry{}, false, nil
	}
	if err != nil {
		return game.Entry{}, false, fmt.Errorf("lookup word: %w", err)
	}
	e.Category = game.Category(category)
	return e, true, nil
}

// StartingWith implements game.Vocabulary.
func (s *SQLite) StartingWith(ctx context.Context, letter string, exclude game.UsedWords) ([]game.Entry, error) {
	query := `SELECT word, normalized_word, category, description FROM words WHERE first_letter=?`
	args := []any{words.FirstLetter(game.Normalize(letter))}
	if len(exclude) > 0 {
		list := exclude.List()
		query += ` AND normalized_word NOT IN (?` + strings.Repeat(",?", len(list)-1) + `)`
		for _, w := range list {
			args = append(args, w)
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("words starting with %q: %w", letter, err)
	}
	defer rows.Close()

	var out []game.Entry
	for rows.Next() {
		var e game.Entry
		var category string
		if err := rows.Scan(&e.Word, &e.Normalized, &category, &e.Description); err != nil {
			return nil, err
		}
		e.Category = game.Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertWords inserts or updates vocabulary entries (keyed by normalized
// form) and returns how many rows were written.
func (s *SQLite) UpsertWords(ctx context.Context, entries []game.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO words (word, normalized_word, first_letter, category, description)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(normalized_word) DO UPDATE SET
            word=excluded.word, category=excluded.category, description=excluded.description`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, raw := range entries {
		e, err := words.NormalizeEntry(raw)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, e.Word, e.Normalized, words.FirstLetter(e.Normalized), string(e.Category), e.Description); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", e.Word, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// WordStats counts words per category.
func (s *SQLite) WordStats(ctx context.Context) (map[game.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(1) FROM words GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("word stats: %w", err)
	}
	defer rows.Close()
	out := make(map[game.Category]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		out[game.Category(c)] = n
	}
	return out, rows.Err()
}

// WordCount returns the number of vocabulary rows.
func (s *SQLite) WordCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}
