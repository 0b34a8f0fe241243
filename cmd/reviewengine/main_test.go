package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// setupMCPClient creates and initializes a new MCP client for testing,
// driving the server binary over stdio the way a real UI client would.
func setupMCPClient(t *testing.T) (*client.Client, context.Context, context.CancelFunc, string) {
	// Create temporary storage file for testing
	tempFile, err := os.CreateTemp("", "review-engine-test-*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	tempFilePath := tempFile.Name()

	// Initialize with an empty JSON object to make it a valid state file
	err = os.WriteFile(tempFilePath, []byte("{}"), 0644)
	if err != nil {
		t.Fatalf("Failed to initialize temp file: %v", err)
	}

	c, err := client.NewStdioMCPClient(
		"go",
		[]string{}, // Empty ENV
		"run",
		".",
		"-file",
		tempFilePath,
	)
	if err != nil {
		os.Remove(tempFilePath)
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "review-engine-test-client",
		Version: "1.0.0",
	}

	_, err = c.Initialize(ctx, initRequest)
	if err != nil {
		cancel()
		c.Close()
		os.Remove(tempFilePath)
		t.Fatalf("Failed to initialize: %v", err)
	}

	return c, ctx, cancel, tempFilePath
}

// callTool invokes a tool and decodes the JSON text payload into out.
func callTool(t *testing.T, c *client.Client, ctx context.Context, name string, args map[string]interface{}, out interface{}) {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.CallTool(ctx, request)
	if err != nil {
		t.Fatalf("Failed to call %s: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("No content returned from %s", name)
	}
	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent from %s, got %T", name, result.Content[0])
	}
	if err := json.Unmarshal([]byte(textContent.Text), out); err != nil {
		t.Fatalf("Failed to parse %s response JSON: %v\nPayload: %s", name, err, textContent.Text)
	}
}

// TestReviewFlowEndToEnd drives a full review exchange over stdio: record a
// review, see the card in the due queue, preview the next intervals, and
// read the stats and XP rollups.
func TestReviewFlowEndToEnd(t *testing.T) {
	c, ctx, cancel, tempFilePath := setupMCPClient(t)
	defer c.Close()
	defer cancel()
	defer os.Remove(tempFilePath)

	// A failing first review keeps the card due immediately, so it must
	// show up in the due queue right away.
	var review ReviewResponse
	callTool(t, c, ctx, "record_review", map[string]interface{}{
		"question_id": "q-e2e-1",
		"rating":      1,
		"channel":     "algebra",
		"difficulty":  "medium",
	}, &review)

	if !review.Success {
		t.Fatalf("record_review reported failure: %s", review.Message)
	}
	if review.Card.QuestionID != "q-e2e-1" {
		t.Errorf("Unexpected question ID: %s", review.Card.QuestionID)
	}
	if review.XPEarned != 0 {
		t.Errorf("Again review earned XP: %d", review.XPEarned)
	}
	if review.Card.Lapses != 1 {
		t.Errorf("Expected 1 lapse, got %d", review.Card.Lapses)
	}

	var due DueCardsResponse
	callTool(t, c, ctx, "get_due_cards", nil, &due)
	if due.Count != 1 || len(due.Cards) != 1 {
		t.Fatalf("Expected exactly one due card, got %d", due.Count)
	}
	if due.Cards[0].QuestionID != "q-e2e-1" {
		t.Errorf("Unexpected due card: %s", due.Cards[0].QuestionID)
	}

	var preview PreviewResponse
	callTool(t, c, ctx, "preview_review", map[string]interface{}{
		"question_id": "q-e2e-1",
	}, &preview)
	if len(preview.Intervals) != 4 {
		t.Errorf("Expected 4 preview intervals, got %d", len(preview.Intervals))
	}

	// A Good review reschedules the card out of the due queue and earns XP.
	callTool(t, c, ctx, "record_review", map[string]interface{}{
		"question_id": "q-e2e-1",
		"rating":      3,
	}, &review)
	if review.XPEarned != 10 {
		t.Errorf("Expected 10 XP for Good on a New card, got %d", review.XPEarned)
	}

	callTool(t, c, ctx, "get_due_cards", nil, &due)
	if due.Count != 0 {
		t.Errorf("Expected empty due queue after rescheduling, got %d", due.Count)
	}

	var stats EngineStats
	callTool(t, c, ctx, "get_stats", nil, &stats)
	if stats.TotalCardsTracked != 1 {
		t.Errorf("Expected 1 tracked card, got %d", stats.TotalCardsTracked)
	}
	if stats.ReviewStreak != 1 {
		t.Errorf("Expected streak 1 after today's reviews, got %d", stats.ReviewStreak)
	}
	if stats.LifetimeLapses != 1 {
		t.Errorf("Expected 1 lifetime lapse, got %d", stats.LifetimeLapses)
	}

	var xpResp XPResponse
	callTool(t, c, ctx, "get_user_xp", nil, &xpResp)
	if xpResp.Progress.TotalXP != 10 {
		t.Errorf("Expected 10 total XP, got %d", xpResp.Progress.TotalXP)
	}

	callTool(t, c, ctx, "add_xp", map[string]interface{}{"amount": 90}, &xpResp)
	if xpResp.Progress.TotalXP != 100 {
		t.Errorf("Expected 100 total XP after bonus, got %d", xpResp.Progress.TotalXP)
	}
	if xpResp.Progress.Level != 2 {
		t.Errorf("Expected level 2 at 100 XP, got %d", xpResp.Progress.Level)
	}
}

// TestStatePersistsAcrossRestarts verifies the JSON state file survives a
// server restart with scheduling state intact.
func TestStatePersistsAcrossRestarts(t *testing.T) {
	c, ctx, cancel, tempFilePath := setupMCPClient(t)
	defer os.Remove(tempFilePath)

	var review ReviewResponse
	callTool(t, c, ctx, "record_review", map[string]interface{}{
		"question_id": "q-persist",
		"rating":      4,
	}, &review)
	if review.Card.IntervalDays != 7 {
		t.Errorf("Expected 7 day interval for first Easy, got %v", review.Card.IntervalDays)
	}

	cancel()
	c.Close()

	// Restart against the same file.
	c2, err := client.NewStdioMCPClient("go", []string{}, "run", ".", "-file", tempFilePath)
	if err != nil {
		t.Fatalf("Failed to restart client: %v", err)
	}
	defer c2.Close()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel2()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "review-engine-test-client",
		Version: "1.0.0",
	}
	if _, err := c2.Initialize(ctx2, initRequest); err != nil {
		t.Fatalf("Failed to initialize restarted client: %v", err)
	}

	var stats EngineStats
	callTool(t, c2, ctx2, "get_stats", nil, &stats)
	if stats.TotalCardsTracked != 1 {
		t.Errorf("Expected 1 tracked card after restart, got %d", stats.TotalCardsTracked)
	}

	var preview PreviewResponse
	callTool(t, c2, ctx2, "preview_review", map[string]interface{}{
		"question_id": "q-persist",
	}, &preview)
	// 7 * 2.5 = 17.5 days confirms the ease factor survived the restart.
	if preview.Intervals["Good"] != "17.5 days" {
		t.Errorf("Expected Good preview of 17.5 days, got %q", preview.Intervals["Good"])
	}
}
