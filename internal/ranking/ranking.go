// Package ranking lists finished games for leaderboards.
//
// Filters: period in days, case-insensitive player-name substring.
// Sorts: score (desc), recent (created desc), time (duration asc, unknown last).
package ranking

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robalobadob/wordchain/internal/game"
)

// Sort selects the leaderboard order.
type Sort string

const (
	SortScore  Sort = "score"
	SortRecent Sort = "recent"
	SortTime   Sort = "time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Query filters and orders a leaderboard.
type Query struct {
	PeriodDays int    // 0 = all time
	Player     string // substring, case-insensitive
	Sort       Sort
	Limit      int
}

// Row is one leaderboard line.
type Row struct {
	SessionID       string         `json:"sessionId"`
	PlayerName      string         `json:"playerName"`
	Score           int            `json:"score"`
	DurationSeconds *int           `json:"durationSeconds,omitempty"`
	EndReason       game.EndReason `json:"endReason"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Normalize applies defaults and bounds.
func (q Query) Normalize() Query {
	switch q.Sort {
	case SortScore, SortRecent, SortTime:
	default:
		q.Sort = SortScore
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.PeriodDays < 0 {
		q.PeriodDays = 0
	}
	q.Player = strings.TrimSpace(q.Player)
	return q
}

// Apply ranks sessions in memory.
func Apply(sessions []game.Session, q Query, now time.Time) []Row {
	q = q.Normalize()
	var since time.Time
	if q.PeriodDays > 0 {
		since = now.AddDate(0, 0, -q.PeriodDays)
	}
	player := strings.ToLower(q.Player)

	rows := make([]Row, 0, len(sessions))
	for _, s := range sessions {
		if !s.Ended || s.Score == nil {
			continue
		}
		if !since.IsZero() && !s.CreatedAt.After(since) {
			continue
		}
		if player != "" && !strings.Contains(strings.ToLower(s.PlayerName), player) {
			continue
		}
		rows = append(rows, Row{
			SessionID:       s.ID,
			PlayerName:      s.PlayerName,
			Score:           *s.Score,
			DurationSeconds: s.DurationSeconds,
			EndReason:       s.EndReason,
			CreatedAt:       s.CreatedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch q.Sort {
		case SortRecent:
			return a.CreatedAt.After(b.CreatedAt)
		case SortTime:
			if a.DurationSeconds == nil || b.DurationSeconds == nil {
				return a.DurationSeconds != nil
			}
			return *a.DurationSeconds < *b.DurationSeconds
		default:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

// sqlTime matches the fixed-width UTC layout the SQLite store writes, so
// string comparison orders timestamps.
const sqlTime = "2006-01-02T15:04:05.000000000Z"

// Store reads leaderboards from the sessions table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, now: time.Now} }

// Leaderboard runs q against the database.
func (s *Store) Leaderboard(ctx context.Context, q Query) ([]Row, error) {
	q = q.Normalize()
	where := []string{"ended = 1", "score IS NOT NULL"}
	var args []any
	if q.PeriodDays > 0 {
		where = append(where, "created_at > ?")
		args = append(args, s.now().AddDate(0, 0, -q.PeriodDays).UTC().Format(sqlTime))
	}
	if q.Player != "" {
		where = append(where, "LOWER(player_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Player)+"%")
	}
	order := "score DESC, created_at ASC"
	switch q.Sort {
	case SortRecent:
		order = "created_at DESC"
	case SortTime:
		order = "duration_seconds IS NULL, duration_seconds ASC"
	}
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, player_name, score, duration_seconds, COALESCE(end_reason, ''), created_at
        FROM sessions
        WHERE `+strings.Join(where, " AND ")+`
        ORDER BY `+order+`
        LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0, q.Limit)
	for rows.Next() {
		var (
			r       Row
			dur     sql.NullInt64
			reason  string
			created string
		)
		if err := rows.Scan(&r.SessionID, &r.PlayerName, &r.Score, &dur, &reason, &created); err != nil {
			return nil, err
		}
		if dur.Valid {
			d := int(dur.Int64)
			r.DurationSeconds = &d
		}
		r.EndReason = game.EndReason(reason)
		r.CreatedAt, _ = time.Parse(sqlTime, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
