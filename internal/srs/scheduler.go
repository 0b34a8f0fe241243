package srs

import (
	"math"
	"time"
)

// Tuning constants for the SM-2-style variant. The exact values are a
// product decision; the test suite pins them as literal expectations.
const (
	// First-review intervals, keyed by rating. Ease-factor arithmetic is
	// undefined with no history, so the first review uses a fixed ladder.
	firstIntervalAgain = 0.0
	firstIntervalHard  = 1.0
	firstIntervalGood  = 3.0
	firstIntervalEasy  = 7.0

	againIntervalFactor = 0.2
	hardIntervalFactor  = 1.2
	easyIntervalBonus   = 1.3

	againEasePenalty = 0.20
	hardEasePenalty  = 0.15
	easyEaseReward   = 0.15
)

// Schedule computes the card state after one review. It is a pure function:
// the input card is not mutated and no clock is read. A card whose
// LastReviewedAt is zero (fresh from NewCard) takes the first-review path.
func Schedule(card ReviewCard, rating Rating, now time.Time) (ReviewCard, error) {
	if !rating.Valid() {
		return ReviewCard{}, ErrInvalidRating
	}

	next := card
	if card.LastReviewedAt.IsZero() {
		scheduleFirst(&next, rating)
	} else {
		scheduleNext(&next, rating)
	}

	next.DueAt = now.Add(durationDays(next.IntervalDays))
	next.LastReviewedAt = now
	return next, nil
}

// scheduleFirst applies the rating-keyed initial intervals.
func scheduleFirst(card *ReviewCard, rating Rating) {
	switch rating {
	case Again:
		card.IntervalDays = firstIntervalAgain
		card.Repetitions = 0
		card.Lapses++
	case Hard:
		card.IntervalDays = firstIntervalHard
		card.Repetitions = 1
	case Good:
		card.IntervalDays = firstIntervalGood
		card.Repetitions = 1
	case Easy:
		card.IntervalDays = firstIntervalEasy
		card.Repetitions = 1
	}
	card.Mastery = promote(card.Mastery, card.Repetitions, card.IntervalDays, rating)
}

// scheduleNext applies the ease-factor arithmetic for a card with history.
func scheduleNext(card *ReviewCard, rating Rating) {
	prior := card.IntervalDays
	switch rating {
	case Again:
		// Shrink hard but never grow: a lapsed one-day card stays at one
		// day, and a card that was due immediately stays due immediately.
		card.IntervalDays = math.Min(prior, math.Max(1, math.Floor(prior*againIntervalFactor)))
		card.EaseFactor = math.Max(MinEaseFactor, card.EaseFactor-againEasePenalty)
		card.Repetitions = 0
		card.Lapses++
	case Hard:
		card.IntervalDays = math.Max(1, prior*hardIntervalFactor)
		card.EaseFactor = math.Max(MinEaseFactor, card.EaseFactor-hardEasePenalty)
		card.Repetitions++
	case Good:
		card.IntervalDays = math.Max(1, prior*card.EaseFactor)
		card.Repetitions++
	case Easy:
		card.IntervalDays = math.Max(1, prior*card.EaseFactor*easyIntervalBonus)
		card.EaseFactor += easyEaseReward
		card.Repetitions++
	}
	card.Mastery = promote(card.Mastery, card.Repetitions, card.IntervalDays, rating)
}

// promote derives the post-review mastery level. A lapse demotes exactly one
// level; a successful review climbs at most one level, capped by what the
// repetition count and interval actually justify. The cap keeps a brand-new
// card from jumping straight to Young on its first Good.
func promote(prior MasteryLevel, repetitions int, intervalDays float64, rating Rating) MasteryLevel {
	if rating == Again {
		return prior.Demote()
	}
	derived := Classify(repetitions, intervalDays)
	if derived > prior+1 {
		return prior + 1
	}
	return derived
}

func durationDays(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
