package srs

import (
	"errors"
	"fmt"
	"time"
)

// DefaultEaseFactor is the starting ease for a freshly created card.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor the ease factor is clamped to, preventing
// runaway interval shrinkage on repeated lapses.
const MinEaseFactor = 1.3

// ReviewCard is the per-question scheduling state. One exists for every
// question the learner has ever reviewed; cards are created lazily on first
// review and never deleted by the engine.
type ReviewCard struct {
	QuestionID string `json:"question_id"`
	// Channel and Difficulty are denormalized copies from the question
	// catalog, carried for display and filtering only.
	Channel    string `json:"channel,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	EaseFactor   float64      `json:"ease_factor"`
	IntervalDays float64      `json:"interval_days"`
	Repetitions  int          `json:"repetitions"`
	Lapses       int          `json:"lapses"`
	Mastery      MasteryLevel `json:"mastery_level"`

	DueAt          time.Time `json:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at,omitempty"`
}

// Validate checks the structural invariants a persisted card must satisfy.
// Storage uses it to flag corrupt records.
func (c *ReviewCard) Validate() error {
	if c.QuestionID == "" {
		return errors.New("missing question_id")
	}
	if c.EaseFactor < MinEaseFactor {
		return fmt.Errorf("ease_factor %.2f below minimum %.2f", c.EaseFactor, MinEaseFactor)
	}
	if c.IntervalDays < 0 {
		return fmt.Errorf("negative interval_days %.2f", c.IntervalDays)
	}
	if c.Repetitions < 0 || c.Lapses < 0 {
		return errors.New("negative repetition or lapse count")
	}
	if !c.Mastery.Valid() {
		return fmt.Errorf("unknown mastery_level %d", int(c.Mastery))
	}
	if !c.LastReviewedAt.IsZero() && c.DueAt.Before(c.LastReviewedAt) {
		return errors.New("due_at precedes last_reviewed_at")
	}
	return nil
}

// NewCard returns a fresh, never-reviewed card for questionID. It is also
// the recovery state a corrupt record is reset to.
func NewCard(questionID, channel, difficulty string, now time.Time) ReviewCard {
	return ReviewCard{
		QuestionID: questionID,
		Channel:    channel,
		Difficulty: difficulty,
		EaseFactor: DefaultEaseFactor,
		Mastery:    New,
		DueAt:      now,
	}
}
