package pick

import "context"

// Repository is the pick store. Writes are last-write-wins on the
// (UserID, WeekNumber) key; the store offers no conflict signal for
// near-simultaneous submissions.
type Repository interface {
	// Get returns the pick for the user and week, if any.
	Get(ctx context.Context, userID string, week int) (Pick, bool, error)
	// ListBefore returns the user's picks with WeekNumber strictly below
	// week, ascending by week. Negative bonus weeks are included.
	ListBefore(ctx context.Context, userID string, week int) ([]Pick, error)
	// ListByWeek returns every pick recorded for the given week.
	ListByWeek(ctx context.Context, week int) ([]Pick, error)
	// ListUnresolved returns every pick with no outcome, across all users
	// and weeks.
	ListUnresolved(ctx context.Context) ([]Pick, error)
	// ListAll returns the full pick history.
	ListAll(ctx context.Context) ([]Pick, error)
	// Put upserts the pick keyed by (UserID, WeekNumber).
	Put(ctx context.Context, p Pick) error
}
