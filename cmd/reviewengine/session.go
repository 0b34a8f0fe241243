package main

import (
	"time"

	"github.com/quizflow/review-engine/internal/srs"
)

// ReviewSession is the local iteration state for one sitting: a snapshot of
// the due queue taken at session start. Skipping a card is purely a cursor
// move; the scheduler and the store are never touched, so a skipped card
// simply stays due for a later session.
type ReviewSession struct {
	queue []srs.ReviewCard
	pos   int
}

// StartSession snapshots the current due queue into a new session.
func (s *ReviewService) StartSession(now time.Time) (*ReviewSession, error) {
	due, err := s.GetDueCards(now)
	if err != nil {
		return nil, err
	}
	return &ReviewSession{queue: due}, nil
}

// Current returns the card under the cursor, or false when the session is
// exhausted.
func (rs *ReviewSession) Current() (srs.ReviewCard, bool) {
	if rs.pos >= len(rs.queue) {
		return srs.ReviewCard{}, false
	}
	return rs.queue[rs.pos], true
}

// Skip advances past the current card without reviewing it.
func (rs *ReviewSession) Skip() {
	if rs.pos < len(rs.queue) {
		rs.pos++
	}
}

// Remaining reports how many cards are left in the session, including the
// current one.
func (rs *ReviewSession) Remaining() int {
	return len(rs.queue) - rs.pos
}
