package season

import (
	"math"
	"time"
)

// DefaultFinalWeek is the last week of the regular season.
const DefaultFinalWeek = 17

// Clock derives the current week number from wall-clock time relative to a
// fixed season-start anchor. It holds no mutable state; callers pass "now"
// explicitly, so the same command issued near a week boundary can land in
// different weeks depending on when it arrives.
type Clock struct {
	Anchor    time.Time
	FinalWeek int
}

func NewClock(anchor time.Time, finalWeek int) Clock {
	if finalWeek <= 0 {
		finalWeek = DefaultFinalWeek
	}
	return Clock{Anchor: anchor, FinalWeek: finalWeek}
}

// WeekAt returns floor((now-anchor)/7d)+1, clamped to a minimum of 1.
func (c Clock) WeekAt(now time.Time) int {
	elapsed := now.Sub(c.Anchor)
	week := int(math.Floor(elapsed.Hours()/(24*7))) + 1
	if week < 1 {
		return 1
	}
	return week
}

// Ended reports whether the given week falls past the season's final week.
func (c Clock) Ended(week int) bool {
	return week > c.FinalWeek
}
