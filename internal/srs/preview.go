package srs

import (
	"fmt"
	"math"
	"time"
)

// PreviewIntervals runs the scheduling arithmetic for all four ratings
// against a copy of card and returns a human-readable interval per rating,
// so the UI can show "what happens if I pick X" before the learner commits.
// The input card is never mutated.
func PreviewIntervals(card ReviewCard, now time.Time) map[Rating]string {
	previews := make(map[Rating]string, 4)
	for _, rating := range []Rating{Again, Hard, Good, Easy} {
		next, err := Schedule(card, rating, now)
		if err != nil {
			// Unreachable with the fixed rating set; keep the map total.
			previews[rating] = "unknown"
			continue
		}
		previews[rating] = FormatInterval(next.IntervalDays)
	}
	return previews
}

// FormatInterval renders an interval in days as a short display string.
func FormatInterval(days float64) string {
	switch {
	case days == 0:
		return "now"
	case days < 1:
		return "less than a day"
	case days == 1:
		return "1 day"
	case days == math.Trunc(days):
		return fmt.Sprintf("%d days", int(days))
	default:
		return fmt.Sprintf("%.1f days", days)
	}
}
