package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quizflow/review-engine/internal/storage"
)

const reviewEngineServerInfo = `
This server is the spaced-repetition review engine of a flashcard-style
learning platform. It decides when each question is next due, how a
confidence rating shifts that schedule, and how mastery, streaks, and XP
evolve from review outcomes.

Session workflow:

1. Call get_due_cards to fetch the review queue, weakest cards first.
2. Present one question at a time. Optionally call preview_review to show
   the learner what each rating would do to the schedule before they commit.
3. After the learner self-rates their recall (1=Again, 2=Hard, 3=Good,
   4=Easy), call record_review. This is the only call that changes state.
4. A learner may defer a card; in that case simply move on to the next one
   without calling record_review.
5. Use get_stats and get_user_xp for progress summaries between sessions.

Question content itself lives in the external catalog; this engine only
tracks scheduling state keyed by question_id.
`

func main() {
	// Parse command-line flags
	filePath := flag.String("file", "./review-state.json", "Path to review state file")
	flag.Parse()

	// Initialize storage
	fileStorage := storage.NewFileStorage(*filePath)
	if err := fileStorage.Load(); err != nil {
		fmt.Printf("Error loading storage: %v\n", err)
		os.Exit(1)
	}

	// Create a new MCP server
	s := server.NewMCPServer(
		"Review Engine MCP",
		"1.0.0",
		server.WithInstructions(reviewEngineServerInfo),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	// Initialize the review service
	reviewService := NewReviewService(fileStorage)

	// Create context with the service for tool handlers
	ctx := context.WithValue(context.Background(), "service", reviewService)

	getDueCardsTool := mcp.NewTool("get_due_cards",
		mcp.WithDescription(
			"Get every card currently due for review, ordered by due time "+
				"with the weakest mastery first. Returns an empty list when "+
				"nothing is due.",
		),
	)

	recordReviewTool := mcp.NewTool("record_review",
		mcp.WithDescription(
			"Record the learner's recall rating for one question and "+
				"reschedule it. Creates the card on first review. Returns the "+
				"updated card, the XP earned, and the learner's level progress.",
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("The catalog ID of the question being reviewed"),
		),
		mcp.WithNumber("rating",
			mcp.Required(),
			mcp.Description("Rating from 1-4: Again=1, Hard=2, Good=3, Easy=4"),
		),
		mcp.WithString("channel",
			mcp.Description("Catalog channel of the question, used when the review creates the card"),
		),
		mcp.WithString("difficulty",
			mcp.Description("Catalog difficulty of the question, used when the review creates the card"),
		),
	)

	previewReviewTool := mcp.NewTool("preview_review",
		mcp.WithDescription(
			"Show what each rating (Again/Hard/Good/Easy) would do to a "+
				"card's next interval, without recording anything. Use it to "+
				"let the learner see the consequences before they commit.",
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("The catalog ID of the question"),
		),
	)

	getStatsTool := mcp.NewTool("get_stats",
		mcp.WithDescription(
			"Get the learner's progress rollup: cards due today, current and "+
				"longest review streaks, mastery distribution, rating tally, "+
				"and lifetime lapses.",
		),
	)

	getUserXPTool := mcp.NewTool("get_user_xp",
		mcp.WithDescription(
			"Get the learner's level, total XP, XP to the next level, and "+
				"progress percent.",
		),
	)

	addXPTool := mcp.NewTool("add_xp",
		mcp.WithDescription(
			"Grant bonus XP outside the normal review flow (e.g. for a "+
				"completed challenge). The amount must be non-negative.",
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Non-negative XP amount to add"),
		),
	)

	// Register all tools with their handlers
	s.AddTool(getDueCardsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Pass the context with service to the handler
		return handleGetDueCards(ctx, request)
	})
	s.AddTool(recordReviewTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRecordReview(ctx, request)
	})
	s.AddTool(previewReviewTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePreviewReview(ctx, request)
	})
	s.AddTool(getStatsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetStats(ctx, request)
	})
	s.AddTool(getUserXPTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetUserXP(ctx, request)
	})
	s.AddTool(addXPTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddXP(ctx, request)
	})

	// Start the server
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Error serving MCP server: %v", err)
	}
}
