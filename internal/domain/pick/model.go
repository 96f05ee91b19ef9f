package pick

import "time"

// Pick is one user's selection for one week. There is at most one record per
// (UserID, WeekNumber); resubmitting before kickoff overwrites in place.
type Pick struct {
	UserID        string
	WeekNumber    int
	SelectedTeam  string
	UserName      string
	SelectionTime time.Time
	// GameID references the schedule provider's game the pick is tied to.
	// Nil for legacy or manually credited entries, which are never
	// auto-settled.
	GameID *string
	// Outcome is nil while the pick is unresolved. Once settlement writes it
	// the value never changes.
	Outcome *bool
}

// Resolved reports whether settlement has assigned a win/loss outcome.
func (p Pick) Resolved() bool {
	return p.Outcome != nil
}

// Won reports a settled win. Unresolved picks are not wins.
func (p Pick) Won() bool {
	return p.Outcome != nil && *p.Outcome
}
