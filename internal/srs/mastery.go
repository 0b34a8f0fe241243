package srs

import "fmt"

// MasteryLevel is the coarse retention classification of a card.
// Levels are ordered: a card climbs toward Mastered on sustained recall and
// is demoted one level per lapse, so the ladder is not a one-way automaton.
type MasteryLevel int

const (
	New MasteryLevel = iota
	Learning
	Young
	Mature
	Mastered
)

// Interval thresholds (in days) for the classification ladder.
const (
	youngIntervalDays    = 1.0
	matureIntervalDays   = 21.0
	masteredIntervalDays = 60.0
)

// Classify maps a card's repetition count and current interval to a mastery
// level. Zero repetitions always means New, regardless of interval.
func Classify(repetitions int, intervalDays float64) MasteryLevel {
	switch {
	case repetitions == 0:
		return New
	case intervalDays < youngIntervalDays:
		return Learning
	case intervalDays < matureIntervalDays:
		return Young
	case intervalDays < masteredIntervalDays:
		return Mature
	default:
		return Mastered
	}
}

// Demote returns the level one step below m, flooring at New.
func (m MasteryLevel) Demote() MasteryLevel {
	if m <= New {
		return New
	}
	return m - 1
}

func (m MasteryLevel) String() string {
	switch m {
	case New:
		return "New"
	case Learning:
		return "Learning"
	case Young:
		return "Young"
	case Mature:
		return "Mature"
	case Mastered:
		return "Mastered"
	default:
		return fmt.Sprintf("MasteryLevel(%d)", int(m))
	}
}

// Emoji returns a presentation glyph for the level.
func (m MasteryLevel) Emoji() string {
	switch m {
	case New:
		return "🌱"
	case Learning:
		return "📖"
	case Young:
		return "🌿"
	case Mature:
		return "🌳"
	case Mastered:
		return "🏆"
	default:
		return "❓"
	}
}

// Color returns a UI color token for the level.
func (m MasteryLevel) Color() string {
	switch m {
	case New:
		return "gray"
	case Learning:
		return "blue"
	case Young:
		return "teal"
	case Mature:
		return "green"
	case Mastered:
		return "gold"
	default:
		return "gray"
	}
}

// Valid reports whether m is one of the five defined levels.
func (m MasteryLevel) Valid() bool {
	return m >= New && m <= Mastered
}
