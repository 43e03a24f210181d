package game

import (
	"errors"
	"math"
)

// Scoring constants. A game averaging OptimalSecondsPerTurn per turn scores
// BaseScorePerTurn per turn; faster play earns up to MaxTimeBonus.
const (
	BaseScorePerTurn      = 100
	OptimalSecondsPerTurn = 10.0
	MinSecondsPerTurn     = 1.0
	MaxTimeBonus          = 1.5
)

// ErrNegativeScoreInput is returned for negative turn counts or durations.
var ErrNegativeScoreInput = errors.New("score: turn count and duration must be non-negative")

// Score is the result of CalculateScore.
type Score struct {
	Points    int
	TimeBonus float64
}

// CalculateScore maps (turn count, elapsed seconds) to a final score:
//
//	bonus  = min(10 / max(duration/turns, 1), 1.5)   (1.0 when turns or duration is 0)
//	points = floor(turns * 100 * bonus)
func CalculateScore(turnCount int, durationSeconds float64) (Score, error) {
	if turnCount < 0 || durationSeconds < 0 || math.IsNaN(durationSeconds) {
		return Score{}, ErrNegativeScoreInput
	}
	bonus := 1.0
	if turnCount > 0 && durationSeconds > 0 {
		avg := durationSeconds / float64(turnCount)
		bonus = math.Min(OptimalSecondsPerTurn/math.Max(avg, MinSecondsPerTurn), MaxTimeBonus)
	}
	points := math.Floor(float64(turnCount) * BaseScorePerTurn * bonus)
	return Score{Points: int(points), TimeBonus: bonus}, nil
}
