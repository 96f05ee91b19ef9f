package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/domain/pick"
)

const defaultSettlementWorkers = 4

// SettlementService reconciles unresolved picks against completed games.
// It only ever transitions a pick from unresolved to settled, so repeated
// runs before games close are cheap no-ops and concurrent runs are safe.
type SettlementService struct {
	pickRepo   pick.Repository
	schedule   ScheduleProvider
	seasonYear int
	workers    int
	logger     *slog.Logger
}

func NewSettlementService(
	pickRepo pick.Repository,
	schedule ScheduleProvider,
	seasonYear int,
	logger *slog.Logger,
) *SettlementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementService{
		pickRepo:   pickRepo,
		schedule:   schedule,
		seasonYear: seasonYear,
		workers:    defaultSettlementWorkers,
		logger:     logger,
	}
}

// Settle assigns outcomes to unresolved picks whose game in the given week
// has closed. It is intended to run for the week immediately prior to the
// current one. Picks whose game has not closed, picks with no recorded game
// id, and picks matching no game in the week are left unresolved for a
// later run. Returns the number of picks updated.
func (s *SettlementService) Settle(ctx context.Context, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	games, err := s.schedule.GetWeek(ctx, s.seasonYear, week)
	if err != nil {
		return 0, fmt.Errorf("fetch week %d schedule: %w", week, err)
	}
	gamesByID := make(map[string]game.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	unresolved, err := s.pickRepo.ListUnresolved(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unresolved picks: %w", err)
	}

	type settlementTask struct {
		record  pick.Pick
		outcome bool
	}

	tasks := make([]settlementTask, 0, len(unresolved))
	for _, p := range unresolved {
		if p.GameID == nil {
			continue
		}
		g, ok := gamesByID[*p.GameID]
		if !ok || !g.Closed() {
			continue
		}
		selectedPoints, ok := g.PointsFor(p.SelectedTeam)
		if !ok {
			continue
		}
		otherPoints, ok := g.PointsAgainst(p.SelectedTeam)
		if !ok {
			continue
		}
		// Ties settle as losses: a win requires strictly more points.
		tasks = append(tasks, settlementTask{record: p, outcome: selectedPoints > otherPoints})
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	workerCount := s.workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return 0, fmt.Errorf("create settlement worker pool: %w", err)
	}
	defer pool.Release()

	var updated atomic.Int32
	errs := make(chan error, len(tasks))

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			settled := task.record
			outcome := task.outcome
			settled.Outcome = &outcome
			if putErr := s.pickRepo.Put(ctx, settled); putErr != nil {
				errs <- fmt.Errorf("settle pick user=%s week=%d: %w", settled.UserID, settled.WeekNumber, putErr)
				return
			}
			updated.Add(1)

			s.logger.InfoContext(ctx, "pick settled",
				"user_id", settled.UserID,
				"week", settled.WeekNumber,
				"team", settled.SelectedTeam,
				"won", outcome,
			)
		}); err != nil {
			workers.Done()
			return int(updated.Load()), fmt.Errorf("submit settlement task: %w", err)
		}
	}

	workers.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return int(updated.Load()), err
	}

	return int(updated.Load()), nil
}
