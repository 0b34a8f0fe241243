// Package main provides implementation for the review engine MCP service.
package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizflow/review-engine/internal/srs"
	"github.com/quizflow/review-engine/internal/storage"
	"github.com/quizflow/review-engine/internal/streak"
	"github.com/quizflow/review-engine/internal/xp"
)

// Catalog is the external question-catalog lookup. The engine only uses it
// to flag cards whose question has disappeared; a miss never blocks
// scheduling, it is a caller-side display concern.
type Catalog interface {
	Exists(questionID string) bool
}

// allowAllCatalog is the default Catalog when no real catalog is wired in.
type allowAllCatalog struct{}

func (allowAllCatalog) Exists(string) bool { return true }

// ReviewService is the session controller: the only component that calls
// the scheduler and persists results. All other operations are read-only.
type ReviewService struct {
	Storage storage.Storage
	Catalog Catalog
	Logger  *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(store storage.Storage) *ReviewService {
	// Initialize Zap logger
	logConfig := zap.NewDevelopmentConfig() // Human-readable output
	logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	logger, err := logConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// Fallback if zap fails (shouldn't normally happen)
		fmt.Printf("Error initializing zap logger: %v. Falling back to Nop logger.\n", err)
		logger = zap.NewNop()
	}

	return &ReviewService{
		Storage: store,
		Catalog: allowAllCatalog{},
		Logger:  logger,
	}
}

// Variable to allow mocking time.Now in tests
var timeNow = time.Now

// recoverCorruptCards resets every corrupt card record to a fresh New card
// due now. Corruption is scoped per card, so the rest of the store keeps
// working while the learner relearns the one lost card.
func (s *ReviewService) recoverCorruptCards(now time.Time) error {
	ids := s.Storage.CorruptCardIDs()
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		s.Logger.Warn("Resetting corrupt card record", zap.String("question_id", id))
		fresh := srs.NewCard(id, "", "", now)
		if err := s.Storage.PutCard(fresh); err != nil {
			return fmt.Errorf("error resetting corrupt card %s: %w", id, err)
		}
	}
	if err := s.Storage.Save(); err != nil {
		return fmt.Errorf("error saving storage after corrupt-card recovery: %w", err)
	}
	return nil
}

// GetDueCards returns every card with DueAt <= now, sorted ascending by due
// time with ties broken by ascending mastery so the weakest cards surface
// first. The ordering is deterministic for a fixed input set.
func (s *ReviewService) GetDueCards(now time.Time) ([]srs.ReviewCard, error) {
	s.Logger.Debug("GetDueCards called", zap.Time("now", now))

	if err := s.recoverCorruptCards(now); err != nil {
		return nil, err
	}

	allCards, err := s.Storage.ListCards()
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}

	due := make([]srs.ReviewCard, 0, len(allCards))
	for _, card := range allCards {
		if !card.DueAt.After(now) {
			due = append(due, card)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		if due[i].Mastery != due[j].Mastery {
			return due[i].Mastery < due[j].Mastery
		}
		return due[i].QuestionID < due[j].QuestionID
	})

	s.Logger.Debug("GetDueCards result",
		zap.Int("total_cards", len(allCards)),
		zap.Int("due_cards", len(due)))
	return due, nil
}

// RecordReview is the single mutating entry point of the engine: it loads
// or lazily creates the card, runs the scheduler, persists the outcome,
// stamps the activity ledger, and awards XP. On a validation failure no
// state changes at all.
func (s *ReviewService) RecordReview(questionID, channel, difficulty string, rating srs.Rating, now time.Time) (srs.ReviewCard, int, error) {
	s.Logger.Debug("RecordReview starting",
		zap.String("question_id", questionID),
		zap.Int("rating", int(rating)),
		zap.Time("now", now))

	if !rating.Valid() {
		return srs.ReviewCard{}, 0, srs.ErrInvalidRating
	}

	if !s.Catalog.Exists(questionID) {
		// Display concern only; scheduling proceeds regardless.
		s.Logger.Warn("Question missing from catalog", zap.String("question_id", questionID))
	}

	prior, err := s.Storage.GetCard(questionID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrCardNotFound):
		// First review: create the card lazily from caller-supplied metadata.
		s.Logger.Debug("Creating card on first review", zap.String("question_id", questionID))
		prior = srs.NewCard(questionID, channel, difficulty, now)
	case errors.Is(err, storage.ErrCardCorrupt):
		s.Logger.Warn("Corrupt card record, resetting to fresh state",
			zap.String("question_id", questionID), zap.Error(err))
		prior = srs.NewCard(questionID, channel, difficulty, now)
	default:
		return srs.ReviewCard{}, 0, fmt.Errorf("error getting card: %w", err)
	}

	priorMastery := prior.Mastery

	updated, err := srs.Schedule(prior, rating, now)
	if err != nil {
		return srs.ReviewCard{}, 0, fmt.Errorf("error scheduling review: %w", err)
	}
	s.Logger.Debug("Scheduling result",
		zap.String("question_id", questionID),
		zap.Float64("interval_days", updated.IntervalDays),
		zap.Float64("ease_factor", updated.EaseFactor),
		zap.String("mastery", updated.Mastery.String()),
		zap.Time("due_at", updated.DueAt))

	if err := s.Storage.PutCard(updated); err != nil {
		return srs.ReviewCard{}, 0, fmt.Errorf("error updating card: %w", err)
	}

	if err := s.Storage.AddActivityDay(streak.DayKey(now)); err != nil {
		return srs.ReviewCard{}, 0, fmt.Errorf("error recording activity day: %w", err)
	}

	xpEarned := xp.Award(rating, priorMastery)
	if xpEarned > 0 {
		total, err := s.Storage.GetXP()
		if err != nil {
			return srs.ReviewCard{}, 0, fmt.Errorf("error reading xp state: %w", err)
		}
		if err := s.Storage.SetXP(total + xpEarned); err != nil {
			return srs.ReviewCard{}, 0, fmt.Errorf("error writing xp state: %w", err)
		}
	}

	if _, err := s.Storage.AddReviewEvent(storage.ReviewEvent{
		QuestionID: questionID,
		Rating:     rating,
		XPEarned:   xpEarned,
		Timestamp:  now,
		Mastery:    priorMastery,
	}); err != nil {
		return srs.ReviewCard{}, 0, fmt.Errorf("error adding review event: %w", err)
	}

	if err := s.Storage.Save(); err != nil {
		return srs.ReviewCard{}, 0, fmt.Errorf("error saving storage: %w", err)
	}

	s.Logger.Debug("RecordReview completed",
		zap.String("question_id", questionID),
		zap.Int("xp_earned", xpEarned))
	return updated, xpEarned, nil
}

// PreviewReview returns, per rating, the interval the card would get if the
// learner picked that rating now. Nothing is mutated; an unknown question
// previews as a first review.
func (s *ReviewService) PreviewReview(questionID string, now time.Time) (map[srs.Rating]string, error) {
	card, err := s.Storage.GetCard(questionID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrCardNotFound), errors.Is(err, storage.ErrCardCorrupt):
		card = srs.NewCard(questionID, "", "", now)
	default:
		return nil, fmt.Errorf("error getting card: %w", err)
	}
	return srs.PreviewIntervals(card, now), nil
}

// AddXP adds a non-negative amount to the learner's total and returns the
// new derived progress. A negative amount fails with no state change.
func (s *ReviewService) AddXP(amount int) (xp.Progress, error) {
	if amount < 0 {
		return xp.Progress{}, xp.ErrNegativeAmount
	}

	total, err := s.Storage.GetXP()
	if err != nil {
		return xp.Progress{}, fmt.Errorf("error reading xp state: %w", err)
	}
	if err := s.Storage.SetXP(total + amount); err != nil {
		return xp.Progress{}, fmt.Errorf("error writing xp state: %w", err)
	}
	if err := s.Storage.Save(); err != nil {
		return xp.Progress{}, fmt.Errorf("error saving storage: %w", err)
	}
	return xp.ProgressForXP(total + amount), nil
}

// GetUserXP returns the learner's derived level and progress.
func (s *ReviewService) GetUserXP() (xp.Progress, error) {
	total, err := s.Storage.GetXP()
	if err != nil {
		return xp.Progress{}, fmt.Errorf("error reading xp state: %w", err)
	}
	return xp.ProgressForXP(total), nil
}

// GetStats builds the read-only rollup. It holds no state of its own and
// always reflects the currently persisted records.
func (s *ReviewService) GetStats(now time.Time) (EngineStats, error) {
	s.Logger.Debug("GetStats called", zap.Time("now", now))

	if err := s.recoverCorruptCards(now); err != nil {
		return EngineStats{}, err
	}

	cards, err := s.Storage.ListCards()
	if err != nil {
		return EngineStats{}, fmt.Errorf("error listing cards: %w", err)
	}

	stats := EngineStats{
		MasteryDistribution: make(map[string]int),
		RatingTally:         make(map[string]int),
		TotalCardsTracked:   len(cards),
	}
	for _, card := range cards {
		if !card.DueAt.After(now) {
			stats.DueToday++
		}
		stats.MasteryDistribution[card.Mastery.String()]++
		stats.LifetimeLapses += card.Lapses
	}

	days, err := s.Storage.ListActivityDays()
	if err != nil {
		return EngineStats{}, fmt.Errorf("error listing activity days: %w", err)
	}
	stats.ReviewStreak = streak.Current(days, now)
	stats.LongestStreak = streak.Longest(days)

	events, err := s.Storage.ListReviewEvents()
	if err != nil {
		return EngineStats{}, fmt.Errorf("error listing review events: %w", err)
	}
	for _, event := range events {
		stats.RatingTally[event.Rating.String()]++
	}

	return stats, nil
}
