// Package main provides implementation for the review engine MCP service.
package main

import (
	"github.com/quizflow/review-engine/internal/srs"
	"github.com/quizflow/review-engine/internal/xp"
)

// CardView is a ReviewCard decorated with the mastery display helpers for
// UI consumption.
type CardView struct {
	srs.ReviewCard
	MasteryLabel string `json:"mastery_label"`
	MasteryEmoji string `json:"mastery_emoji"`
	MasteryColor string `json:"mastery_color"`
}

func newCardView(card srs.ReviewCard) CardView {
	return CardView{
		ReviewCard:   card,
		MasteryLabel: card.Mastery.String(),
		MasteryEmoji: card.Mastery.Emoji(),
		MasteryColor: card.Mastery.Color(),
	}
}

// EngineStats is the read-only rollup returned by GetStats.
type EngineStats struct {
	DueToday            int            `json:"due_today"`
	ReviewStreak        int            `json:"review_streak"`
	LongestStreak       int            `json:"longest_streak"`
	MasteryDistribution map[string]int `json:"mastery_distribution"`
	RatingTally         map[string]int `json:"rating_tally"`
	LifetimeLapses      int            `json:"lifetime_lapses"`
	TotalCardsTracked   int            `json:"total_cards_tracked"`
}

// DueCardsResponse represents the response structure for get_due_cards
type DueCardsResponse struct {
	Cards []CardView `json:"cards"`
	Count int        `json:"count"`
}

// ReviewResponse represents the response structure for record_review
type ReviewResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Card     CardView    `json:"card"`
	XPEarned int         `json:"xp_earned"`
	Progress xp.Progress `json:"progress"`
}

// PreviewResponse represents the response structure for preview_review
type PreviewResponse struct {
	QuestionID string            `json:"question_id"`
	Intervals  map[string]string `json:"intervals"`
}

// XPResponse represents the response structure for get_user_xp and add_xp
type XPResponse struct {
	Progress xp.Progress `json:"progress"`
}
