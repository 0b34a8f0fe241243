// Package propertytest holds gopter property suites for the review engine's
// pure components: scheduling arithmetic, XP/leveling, and streak walking.
package propertytest

import (
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/quizflow/review-engine/internal/srs"
)

// baseTime anchors generated review histories so runs are reproducible.
var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// genRating generates one of the four valid ratings.
func genRating() gopter.Gen {
	return gen.IntRange(int(srs.Again), int(srs.Easy)).Map(func(n int) srs.Rating {
		return srs.Rating(n)
	})
}

// genMastery generates one of the five mastery levels.
func genMastery() gopter.Gen {
	return gen.IntRange(int(srs.New), int(srs.Mastered)).Map(func(n int) srs.MasteryLevel {
		return srs.MasteryLevel(n)
	})
}

// genReviewedCard generates a card with an arbitrary but structurally valid
// review history: positive interval, ease at or above the floor, at least
// one recorded review.
func genReviewedCard() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(1, 365),
		gen.Float64Range(srs.MinEaseFactor, 3.5),
		gen.IntRange(1, 50),
		gen.IntRange(0, 20),
		genMastery(),
	).Map(func(values []interface{}) srs.ReviewCard {
		interval := values[0].(float64)
		lastReviewed := baseTime.Add(-time.Duration(interval * 24 * float64(time.Hour)))
		return srs.ReviewCard{
			QuestionID:     "q-prop",
			EaseFactor:     values[1].(float64),
			IntervalDays:   interval,
			Repetitions:    values[2].(int),
			Lapses:         values[3].(int),
			Mastery:        values[4].(srs.MasteryLevel),
			DueAt:          baseTime,
			LastReviewedAt: lastReviewed,
		}
	})
}
