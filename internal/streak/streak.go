// Package streak derives consecutive-day activity streaks from a ledger of
// calendar-date keys, one per day with at least one review.
package streak

import "time"

// dayFormat is the ledger key layout, an ISO-8601 calendar date.
const dayFormat = "2006-01-02"

// DayKey returns the ledger key for t's calendar date.
func DayKey(t time.Time) string {
	return t.Format(dayFormat)
}

// Current counts consecutive active days ending today. It walks backward one
// calendar day at a time from now's date and stops at the first day missing
// from the ledger. A ledger without today yields 0, not an error.
func Current(days []string, now time.Time) int {
	ledger := make(map[string]bool, len(days))
	for _, d := range days {
		ledger[d] = true
	}

	count := 0
	cursor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for ledger[DayKey(cursor)] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// Longest returns the longest run of consecutive active days anywhere in the
// ledger, regardless of when it ended.
func Longest(days []string) int {
	if len(days) == 0 {
		return 0
	}

	ledger := make(map[string]bool, len(days))
	for _, d := range days {
		ledger[d] = true
	}

	longest := 0
	for d := range ledger {
		start, err := time.Parse(dayFormat, d)
		if err != nil {
			continue
		}
		// Only count runs from their first day to avoid rescanning.
		if ledger[DayKey(start.AddDate(0, 0, -1))] {
			continue
		}

		run := 0
		cursor := start
		for ledger[DayKey(cursor)] {
			run++
			cursor = cursor.AddDate(0, 0, 1)
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
