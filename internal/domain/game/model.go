package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusClosed     = "closed"
)

// Game is one scheduled matchup as reported by the schedule provider. Games
// are never persisted; every operation fetches them fresh. Team fields hold
// canonical identifiers, normalized at the provider boundary.
type Game struct {
	ID         string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	Status     string
	HomePoints *int
	AwayPoints *int
}

// NormalizeStatus maps provider status strings onto the three states the
// engine cares about. Anything in flight counts as in-progress; anything
// final counts as closed.
func NormalizeStatus(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case StatusClosed, "complete", "completed", "final":
		return StatusClosed
	case StatusInProgress, "in_progress", "inprogress", "live", "halftime":
		return StatusInProgress
	default:
		return StatusScheduled
	}
}

func (g Game) HasTeam(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Started reports whether kickoff has been reached at the given instant.
func (g Game) Started(now time.Time) bool {
	return !now.Before(g.KickoffAt)
}

func (g Game) Closed() bool {
	return g.Status == StatusClosed
}

// PointsFor returns the final points scored by the given side, or false when
// the team is not in this game or the score is not available yet.
func (g Game) PointsFor(team string) (int, bool) {
	switch team {
	case g.HomeTeam:
		if g.HomePoints == nil {
			return 0, false
		}
		return *g.HomePoints, true
	case g.AwayTeam:
		if g.AwayPoints == nil {
			return 0, false
		}
		return *g.AwayPoints, true
	}
	return 0, false
}

// PointsAgainst returns the opposing side's final points.
func (g Game) PointsAgainst(team string) (int, bool) {
	switch team {
	case g.HomeTeam:
		return g.PointsFor(g.AwayTeam)
	case g.AwayTeam:
		return g.PointsFor(g.HomeTeam)
	}
	return 0, false
}
