package usecase

import (
	"context"

	"github.com/thecommish/pickem/internal/domain/game"
)

// ScheduleProvider supplies the weekly game slate and, once games close,
// final scores. Games are fetched fresh per operation and never cached by
// the engine.
type ScheduleProvider interface {
	GetWeek(ctx context.Context, seasonYear, week int) ([]game.Game, error)
}
