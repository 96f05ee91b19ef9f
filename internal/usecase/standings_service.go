package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/thecommish/pickem/internal/domain/pick"
)

// StandingsRow is one leaderboard line. UserName is the display name seen on
// the user's earliest scanned pick.
type StandingsRow struct {
	UserID   string
	UserName string
	Wins     int
}

type StandingsService struct {
	pickRepo pick.Repository
}

func NewStandingsService(pickRepo pick.Repository) *StandingsService {
	return &StandingsService{pickRepo: pickRepo}
}

// Standings scans the full pick history and counts settled wins per user,
// descending by win count. Ties keep first-seen scan order. Users with no
// settled wins still appear with a zero count.
func (s *StandingsService) Standings(ctx context.Context) ([]StandingsRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Standings")
	defer span.End()

	picks, err := s.pickRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan picks for standings: %w", err)
	}

	order := make([]string, 0, 16)
	byUser := make(map[string]*StandingsRow, 16)
	for _, p := range picks {
		row, ok := byUser[p.UserID]
		if !ok {
			row = &StandingsRow{UserID: p.UserID, UserName: p.UserName}
			byUser[p.UserID] = row
			order = append(order, p.UserID)
		}
		if p.Won() {
			row.Wins++
		}
	}

	rows := make([]StandingsRow, 0, len(order))
	for _, userID := range order {
		rows = append(rows, *byUser[userID])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Wins > rows[j].Wins
	})

	return rows, nil
}
