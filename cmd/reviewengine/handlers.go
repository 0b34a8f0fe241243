// Package main provides implementation for the review engine MCP service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quizflow/review-engine/internal/srs"
	"github.com/quizflow/review-engine/internal/xp"
)

// serviceFromContext pulls the shared ReviewService out of the context the
// tools were registered with.
func serviceFromContext(ctx context.Context) (*ReviewService, bool) {
	s, ok := ctx.Value("service").(*ReviewService)
	return s, ok && s != nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetDueCards returns every card due for review, weakest first, along
// with the count. An empty queue is a normal response, not an error.
func handleGetDueCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	due, err := s.GetDueCards(timeNow())
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error getting due cards: %v", err)), nil
	}

	response := DueCardsResponse{
		Cards: make([]CardView, 0, len(due)),
		Count: len(due),
	}
	for _, card := range due {
		response.Cards = append(response.Cards, newCardView(card))
	}
	return jsonResult(response)
}

// handleRecordReview records one review outcome: it schedules the card,
// persists it, stamps the activity ledger, and reports the XP earned.
func handleRecordReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	questionID, ok := request.Params.Arguments["question_id"].(string)
	if !ok || questionID == "" {
		return mcp.NewToolResultText("Error: question_id is required"), nil
	}

	ratingValue, ok := request.Params.Arguments["rating"].(float64)
	if !ok {
		return mcp.NewToolResultText("Error: rating is required and must be a number"), nil
	}
	rating, err := srs.ParseRating(int(ratingValue))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error: %v", err)), nil
	}

	// Optional catalog metadata, only used when the review creates the card.
	channel, _ := request.Params.Arguments["channel"].(string)
	difficulty, _ := request.Params.Arguments["difficulty"].(string)

	card, xpEarned, err := s.RecordReview(questionID, channel, difficulty, rating, timeNow())
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error recording review: %v", err)), nil
	}

	progress, err := s.GetUserXP()
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error reading xp state: %v", err)), nil
	}

	response := ReviewResponse{
		Success:  true,
		Message:  fmt.Sprintf("Review recorded, next due in %s", srs.FormatInterval(card.IntervalDays)),
		Card:     newCardView(card),
		XPEarned: xpEarned,
		Progress: progress,
	}
	return jsonResult(response)
}

// handlePreviewReview shows what each of the four ratings would do to the
// card's interval, without committing anything.
func handlePreviewReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	questionID, ok := request.Params.Arguments["question_id"].(string)
	if !ok || questionID == "" {
		return mcp.NewToolResultText("Error: question_id is required"), nil
	}

	previews, err := s.PreviewReview(questionID, timeNow())
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error previewing review: %v", err)), nil
	}

	response := PreviewResponse{
		QuestionID: questionID,
		Intervals:  make(map[string]string, len(previews)),
	}
	for rating, interval := range previews {
		response.Intervals[rating.String()] = interval
	}
	return jsonResult(response)
}

// handleGetStats returns the read-only rollup: due count, streaks, mastery
// distribution, rating tally, lifetime lapses.
func handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	stats, err := s.GetStats(timeNow())
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error getting stats: %v", err)), nil
	}
	return jsonResult(stats)
}

// handleGetUserXP returns the learner's level and progress toward the next.
func handleGetUserXP(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	progress, err := s.GetUserXP()
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error reading xp state: %v", err)), nil
	}
	return jsonResult(XPResponse{Progress: progress})
}

// handleAddXP grants a non-negative amount of bonus XP.
func handleAddXP(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFromContext(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}

	amountValue, ok := request.Params.Arguments["amount"].(float64)
	if !ok {
		return mcp.NewToolResultText("Error: amount is required and must be a number"), nil
	}
	if amountValue != float64(int(amountValue)) {
		return mcp.NewToolResultText("Error: amount must be a whole number"), nil
	}

	progress, err := s.AddXP(int(amountValue))
	if err != nil {
		if errors.Is(err, xp.ErrNegativeAmount) {
			return mcp.NewToolResultText("Error: amount must be non-negative"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Error adding xp: %v", err)), nil
	}
	return jsonResult(XPResponse{Progress: progress})
}
