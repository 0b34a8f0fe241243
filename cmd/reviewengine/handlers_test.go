package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizflow/review-engine/internal/srs"
)

// setupHandlerContext builds the context the tool closures are registered
// with in main.
func setupHandlerContext(t *testing.T) (context.Context, *ReviewService) {
	t.Helper()
	service, _ := setupTestService(t)
	return context.WithValue(context.Background(), "service", service), service
}

func callToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "Expected tool result content")
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

func TestHandleRecordReviewAndGetDueCards(t *testing.T) {
	ctx, _ := setupHandlerContext(t)
	restore := mockTimeNow(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	defer restore()

	// Record a failing first review so the card stays due immediately.
	result, err := handleRecordReview(ctx, callToolRequest("record_review", map[string]interface{}{
		"question_id": "q-001",
		"rating":      float64(srs.Again),
		"channel":     "algebra",
		"difficulty":  "medium",
	}))
	require.NoError(t, err)

	var review ReviewResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &review))
	assert.True(t, review.Success)
	assert.Equal(t, "q-001", review.Card.QuestionID)
	assert.Equal(t, 0, review.XPEarned, "Again must earn no XP")
	assert.Equal(t, "New", review.Card.MasteryLabel)
	assert.NotEmpty(t, review.Card.MasteryEmoji)

	result, err = handleGetDueCards(ctx, callToolRequest("get_due_cards", nil))
	require.NoError(t, err)

	var due DueCardsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &due))
	assert.Equal(t, 1, due.Count)
	require.Len(t, due.Cards, 1)
	assert.Equal(t, "q-001", due.Cards[0].QuestionID)
}

func TestHandleRecordReviewValidation(t *testing.T) {
	ctx, service := setupHandlerContext(t)
	restore := mockTimeNow(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	defer restore()

	// Missing question_id.
	result, err := handleRecordReview(ctx, callToolRequest("record_review", map[string]interface{}{
		"rating": float64(3),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "question_id is required")

	// Out-of-range rating.
	result, err = handleRecordReview(ctx, callToolRequest("record_review", map[string]interface{}{
		"question_id": "q-001",
		"rating":      float64(9),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "invalid rating")

	// Neither attempt may have created a card.
	cards, listErr := service.Storage.ListCards()
	require.NoError(t, listErr)
	assert.Empty(t, cards)
}

func TestHandlePreviewReview(t *testing.T) {
	ctx, _ := setupHandlerContext(t)
	restore := mockTimeNow(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	defer restore()

	result, err := handlePreviewReview(ctx, callToolRequest("preview_review", map[string]interface{}{
		"question_id": "q-unseen",
	}))
	require.NoError(t, err)

	var preview PreviewResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &preview))
	assert.Equal(t, "q-unseen", preview.QuestionID)
	assert.Equal(t, map[string]string{
		"Again": "now",
		"Hard":  "1 day",
		"Good":  "3 days",
		"Easy":  "7 days",
	}, preview.Intervals)
}

func TestHandleStatsAndXP(t *testing.T) {
	ctx, _ := setupHandlerContext(t)
	restore := mockTimeNow(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	defer restore()

	_, err := handleRecordReview(ctx, callToolRequest("record_review", map[string]interface{}{
		"question_id": "q-001",
		"rating":      float64(srs.Easy),
	}))
	require.NoError(t, err)

	result, err := handleGetStats(ctx, callToolRequest("get_stats", nil))
	require.NoError(t, err)

	var stats EngineStats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &stats))
	assert.Equal(t, 1, stats.TotalCardsTracked)
	assert.Equal(t, 1, stats.ReviewStreak)
	assert.Equal(t, map[string]int{"Easy": 1}, stats.RatingTally)

	result, err = handleGetUserXP(ctx, callToolRequest("get_user_xp", nil))
	require.NoError(t, err)

	var xpResp XPResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &xpResp))
	assert.Equal(t, 15, xpResp.Progress.TotalXP, "Easy on a New card earns 15 XP")

	// add_xp grants bonus XP on top.
	result, err = handleAddXP(ctx, callToolRequest("add_xp", map[string]interface{}{
		"amount": float64(85),
	}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &xpResp))
	assert.Equal(t, 100, xpResp.Progress.TotalXP)
	assert.Equal(t, 2, xpResp.Progress.Level)

	// Negative bonus is rejected.
	result, err = handleAddXP(ctx, callToolRequest("add_xp", map[string]interface{}{
		"amount": float64(-5),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "non-negative")
}

func TestHandlersWithoutService(t *testing.T) {
	ctx := context.Background()

	result, err := handleGetDueCards(ctx, callToolRequest("get_due_cards", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Service not available")
}
