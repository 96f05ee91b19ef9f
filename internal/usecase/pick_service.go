package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/domain/pick"
	"github.com/thecommish/pickem/internal/domain/season"
	"github.com/thecommish/pickem/internal/domain/team"
)

// Verdict enumerates every business outcome of a submission. All verdicts
// are expected, user-facing results; only infrastructure failures surface
// as errors.
type Verdict string

const (
	VerdictAccepted           Verdict = "accepted"
	VerdictStatus             Verdict = "status"
	VerdictUnknownTeam        Verdict = "unknown_team"
	VerdictSeasonEnded        Verdict = "season_ended"
	VerdictTeamAlreadyUsed    Verdict = "team_already_used"
	VerdictLockedIn           Verdict = "locked_in"
	VerdictTeamNotPlaying     Verdict = "team_not_playing"
	VerdictGameAlreadyStarted Verdict = "game_already_started"
)

type SubmitInput struct {
	UserID    string
	UserName  string
	Week      int
	TeamQuery string
	// Now drives every time comparison so the decision is reproducible.
	Now time.Time
}

// SubmitResult carries the verdict plus whatever context the caller needs to
// phrase a reply. Team is the resolved selection where resolution succeeded,
// ConflictWeek names the earlier week for team_already_used, StandingTeam
// names the immovable pick for locked_in, and Standing holds the existing
// record for status reads.
type SubmitResult struct {
	Verdict      Verdict
	Team         string
	Week         int
	ConflictWeek int
	StandingTeam string
	Standing     *pick.Pick
}

// RecordEntry is one line of a user's season record.
type RecordEntry struct {
	Week     int
	Team     string
	Resolved bool
	Won      bool
}

type PickService struct {
	pickRepo   pick.Repository
	schedule   ScheduleProvider
	clock      season.Clock
	seasonYear int
	logger     *slog.Logger
}

func NewPickService(
	pickRepo pick.Repository,
	schedule ScheduleProvider,
	clock season.Clock,
	seasonYear int,
	logger *slog.Logger,
) *PickService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PickService{
		pickRepo:   pickRepo,
		schedule:   schedule,
		clock:      clock,
		seasonYear: seasonYear,
		logger:     logger,
	}
}

// Submit validates one pick submission and persists it when accepted.
// Exactly one write happens on acceptance; every rejection leaves the store
// untouched. An empty team query is a status read and skips validation
// entirely.
func (s *PickService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Submit")
	defer span.End()

	selected, err := team.Resolve(in.TeamQuery)
	if errors.Is(err, team.ErrNoSelection) {
		return s.standingStatus(ctx, in)
	}
	if errors.Is(err, team.ErrUnknownTeam) {
		return SubmitResult{Verdict: VerdictUnknownTeam, Week: in.Week}, nil
	}
	if err != nil {
		return SubmitResult{}, fmt.Errorf("resolve team: %w", err)
	}

	if s.clock.Ended(in.Week) {
		return SubmitResult{Verdict: VerdictSeasonEnded, Team: selected, Week: in.Week}, nil
	}

	standing, hasStanding, err := s.pickRepo.Get(ctx, in.UserID, in.Week)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get standing pick: %w", err)
	}

	history, err := s.pickRepo.ListBefore(ctx, in.UserID, in.Week)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("list prior picks: %w", err)
	}
	for _, prior := range history {
		if prior.SelectedTeam == selected {
			return SubmitResult{
				Verdict:      VerdictTeamAlreadyUsed,
				Team:         selected,
				Week:         in.Week,
				ConflictWeek: prior.WeekNumber,
			}, nil
		}
	}

	games, err := s.schedule.GetWeek(ctx, s.seasonYear, in.Week)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("fetch week %d schedule: %w", in.Week, err)
	}

	if hasStanding {
		if standingGame, ok := findStandingGame(games, standing); ok && standingGame.Started(in.Now) {
			return SubmitResult{
				Verdict:      VerdictLockedIn,
				Team:         selected,
				Week:         in.Week,
				StandingTeam: standing.SelectedTeam,
			}, nil
		}
	}

	selectedGame, ok := gameForTeam(games, selected)
	if !ok {
		return SubmitResult{Verdict: VerdictTeamNotPlaying, Team: selected, Week: in.Week}, nil
	}
	if selectedGame.Started(in.Now) {
		return SubmitResult{Verdict: VerdictGameAlreadyStarted, Team: selected, Week: in.Week}, nil
	}

	gameID := selectedGame.ID
	record := pick.Pick{
		UserID:        in.UserID,
		WeekNumber:    in.Week,
		SelectedTeam:  selected,
		UserName:      in.UserName,
		SelectionTime: in.Now,
		GameID:        &gameID,
	}
	if err := s.pickRepo.Put(ctx, record); err != nil {
		return SubmitResult{}, fmt.Errorf("store pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick accepted",
		"user_id", in.UserID,
		"week", in.Week,
		"team", selected,
		"game_id", gameID,
	)

	return SubmitResult{Verdict: VerdictAccepted, Team: selected, Week: in.Week}, nil
}

// Record returns the user's picks through the given week, oldest first.
func (s *PickService) Record(ctx context.Context, userID string, throughWeek int) ([]RecordEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Record")
	defer span.End()

	picks, err := s.pickRepo.ListBefore(ctx, userID, throughWeek+1)
	if err != nil {
		return nil, fmt.Errorf("list picks for record: %w", err)
	}

	entries := make([]RecordEntry, 0, len(picks))
	for _, p := range picks {
		entries = append(entries, RecordEntry{
			Week:     p.WeekNumber,
			Team:     p.SelectedTeam,
			Resolved: p.Resolved(),
			Won:      p.Won(),
		})
	}
	return entries, nil
}

func (s *PickService) standingStatus(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	standing, ok, err := s.pickRepo.Get(ctx, in.UserID, in.Week)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get standing pick: %w", err)
	}

	result := SubmitResult{Verdict: VerdictStatus, Week: in.Week}
	if ok {
		result.Standing = &standing
		result.StandingTeam = standing.SelectedTeam
	}
	return result, nil
}

func gameForTeam(games []game.Game, teamName string) (game.Game, bool) {
	for _, g := range games {
		if g.HasTeam(teamName) {
			return g, true
		}
	}
	return game.Game{}, false
}

// findStandingGame locates the game a standing pick is tied to, preferring
// the recorded game id and falling back to a team match for records that
// predate game tracking.
func findStandingGame(games []game.Game, standing pick.Pick) (game.Game, bool) {
	if standing.GameID != nil {
		for _, g := range games {
			if g.ID == *standing.GameID {
				return g, true
			}
		}
	}
	return gameForTeam(games, standing.SelectedTeam)
}
