// Package xp computes review reward points and derives a learner level
// from cumulative XP.
package xp

import (
	"errors"
	"math"

	"github.com/quizflow/review-engine/internal/srs"
)

// Base award per rating. A lapse never earns XP, so there is no incentive
// to fail a card on purpose.
const (
	baseAgain = 0
	baseHard  = 5
	baseGood  = 10
	baseEasy  = 15
)

// levelConstant tunes the leveling curve: level = floor(sqrt(total/K)) + 1.
const levelConstant = 100

// ErrNegativeAmount is returned when a caller tries to add negative XP.
var ErrNegativeAmount = errors.New("xp amount must be non-negative")

// Award returns the XP earned for one review outcome. Maintaining a more
// mature card pays more than re-reviewing a trivial one, so the base award
// is scaled by a multiplier on the card's mastery level before the review.
func Award(rating srs.Rating, priorMastery srs.MasteryLevel) int {
	var base int
	switch rating {
	case srs.Again:
		return baseAgain
	case srs.Hard:
		base = baseHard
	case srs.Good:
		base = baseGood
	case srs.Easy:
		base = baseEasy
	default:
		return 0
	}
	return int(float64(base) * masteryMultiplier(priorMastery))
}

func masteryMultiplier(level srs.MasteryLevel) float64 {
	switch level {
	case srs.Young:
		return 1.2
	case srs.Mature:
		return 1.5
	case srs.Mastered:
		return 2.0
	default: // New, Learning
		return 1.0
	}
}

// Progress is the derived leveling state for a cumulative XP total.
type Progress struct {
	TotalXP         int     `json:"total_xp"`
	Level           int     `json:"level"`
	XPToNextLevel   int     `json:"xp_to_next_level"`
	ProgressPercent float64 `json:"progress_percent"`
}

// LevelForXP derives the level for a cumulative total. The curve is
// quadratic in thresholds (level n starts at K*(n-1)^2 XP) and therefore
// monotonically non-decreasing in total.
func LevelForXP(total int) int {
	if total < 0 {
		total = 0
	}
	return int(math.Sqrt(float64(total)/levelConstant)) + 1
}

// levelThreshold returns the cumulative XP at which level begins.
func levelThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	return levelConstant * (level - 1) * (level - 1)
}

// ProgressForXP derives the full leveling state for a cumulative total.
// ProgressPercent is always in [0, 100).
func ProgressForXP(total int) Progress {
	if total < 0 {
		total = 0
	}
	level := LevelForXP(total)
	floor := levelThreshold(level)
	ceiling := levelThreshold(level + 1)

	span := ceiling - floor
	percent := float64(total-floor) / float64(span) * 100.0
	if percent >= 100 {
		percent = math.Nextafter(100, 0)
	}

	return Progress{
		TotalXP:         total,
		Level:           level,
		XPToNextLevel:   ceiling - total,
		ProgressPercent: percent,
	}
}
