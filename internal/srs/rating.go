package srs

import (
	"errors"
	"fmt"
)

// Rating is the learner's self-reported recall confidence for one review.
// The four values match the classic spaced-repetition scale: Again=1,
// Hard=2, Good=3, Easy=4.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// ErrInvalidRating is returned when a rating outside the 1-4 scale is used
var ErrInvalidRating = errors.New("invalid rating: must be 1 (Again), 2 (Hard), 3 (Good), or 4 (Easy)")

// Valid reports whether r is one of the four defined ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// ParseRating converts a numeric rating (e.g. from an MCP tool argument)
// into a Rating, rejecting anything outside the closed set.
func ParseRating(n int) (Rating, error) {
	r := Rating(n)
	if !r.Valid() {
		return 0, ErrInvalidRating
	}
	return r, nil
}
