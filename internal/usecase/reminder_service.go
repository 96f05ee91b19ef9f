package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thecommish/pickem/internal/domain/pick"
)

// ReminderService builds the weekly broadcast nudging the channel to get
// picks in before kickoff.
type ReminderService struct {
	pickRepo pick.Repository
	logger   *slog.Logger
}

func NewReminderService(pickRepo pick.Repository, logger *slog.Logger) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{pickRepo: pickRepo, logger: logger}
}

// WeekReminder returns the broadcast text for the given week, including how
// many picks are already in.
func (s *ReminderService) WeekReminder(ctx context.Context, week int) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.WeekReminder")
	defer span.End()

	if week < 1 {
		return "", fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByWeek(ctx, week)
	if err != nil {
		return "", fmt.Errorf("list week %d picks: %w", week, err)
	}

	s.logger.InfoContext(ctx, "reminder built", "week", week, "picks_in", len(picks))

	if len(picks) == 0 {
		return fmt.Sprintf(":alarm_clock: Week %d is here and nobody has picked yet! Get your picks in with `/pickem pick [team name]`.", week), nil
	}
	return fmt.Sprintf(":alarm_clock: Week %d picks are due before kickoff! %d picks are in so far. `/pickem pick [team name]` if you haven't.", week, len(picks)), nil
}
