package main

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Function to temporarily mock the time.Now function for testing
func mockTimeNow(mockTime time.Time) func() {
	original := timeNow
	timeNow = func() time.Time {
		return mockTime
	}
	return func() {
		timeNow = original
	}
}

// corruptStoredCard injects an unparseable card record under questionID in
// the on-disk store file.
func corruptStoredCard(t *testing.T, filePath, questionID string) {
	t.Helper()

	data, err := os.ReadFile(filePath)
	require.NoError(t, err, "Failed to read state file")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw), "Failed to decode state file")

	cards := map[string]json.RawMessage{}
	if rawCards, ok := raw["cards"]; ok {
		require.NoError(t, json.Unmarshal(rawCards, &cards), "Failed to decode cards")
	}
	cards[questionID] = json.RawMessage(`{"question_id": "` + questionID + `", "ease_factor": "garbage"}`)

	rawCards, err := json.Marshal(cards)
	require.NoError(t, err)
	raw["cards"] = rawCards

	mangled, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filePath, mangled, 0644), "Failed to write mangled state file")
}
