package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/domain/pick"
	"github.com/thecommish/pickem/internal/infrastructure/repository/memory"
)

// countingPickStore wraps the memory store to count writes.
type countingPickStore struct {
	*memory.PickRepository
	mu   sync.Mutex
	puts int
}

func (s *countingPickStore) Put(ctx context.Context, p pick.Pick) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.PickRepository.Put(ctx, p)
}

func closedGame(id, home, away string, homePoints, awayPoints int) game.Game {
	return game.Game{
		ID:         id,
		HomeTeam:   home,
		AwayTeam:   away,
		KickoffAt:  testAnchor,
		Status:     game.StatusClosed,
		HomePoints: &homePoints,
		AwayPoints: &awayPoints,
	}
}

func TestSettlementService_Settle_AwayLoss(t *testing.T) {
	t.Parallel()

	// Jets 20, Patriots 17: a pick on the away-side patriots settles as a
	// loss.
	repo := memory.NewPickRepository()
	gameID := "g-1"
	if err := repo.Put(t.Context(), pick.Pick{UserID: "U1", WeekNumber: 1, SelectedTeam: "patriots", UserName: "alice", GameID: &gameID}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{
		1: {closedGame("g-1", "jets", "patriots", 20, 17)},
	}}
	service := NewSettlementService(repo, schedule, 2017, testLogger())

	updated, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	settled, _, _ := repo.Get(t.Context(), "U1", 1)
	if !settled.Resolved() || settled.Won() {
		t.Fatalf("expected settled loss, got %+v", settled)
	}
}

func TestSettlementService_Settle_WinAndTie(t *testing.T) {
	t.Parallel()

	repo := memory.NewPickRepository()
	winGame, tieGame := "g-1", "g-2"
	seed := []pick.Pick{
		{UserID: "U1", WeekNumber: 1, SelectedTeam: "jets", UserName: "alice", GameID: &winGame},
		{UserID: "U2", WeekNumber: 1, SelectedTeam: "bears", UserName: "bob", GameID: &tieGame},
	}
	for _, p := range seed {
		if err := repo.Put(t.Context(), p); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{
		1: {
			closedGame("g-1", "jets", "patriots", 20, 17),
			closedGame("g-2", "bears", "packers", 21, 21),
		},
	}}
	service := NewSettlementService(repo, schedule, 2017, testLogger())

	updated, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if updated != 2 {
		t.Fatalf("updated = %d, want 2", updated)
	}

	jetsPick, _, _ := repo.Get(t.Context(), "U1", 1)
	if !jetsPick.Won() {
		t.Fatalf("home winner should settle as win")
	}
	tiePick, _, _ := repo.Get(t.Context(), "U2", 1)
	if !tiePick.Resolved() || tiePick.Won() {
		t.Fatalf("tie should settle as loss, got %+v", tiePick)
	}
}

func TestSettlementService_Settle_Idempotent(t *testing.T) {
	t.Parallel()

	store := &countingPickStore{PickRepository: memory.NewPickRepository()}
	gameID := "g-1"
	if err := store.Put(t.Context(), pick.Pick{UserID: "U1", WeekNumber: 1, SelectedTeam: "jets", UserName: "alice", GameID: &gameID}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{
		1: {closedGame("g-1", "jets", "patriots", 20, 17)},
	}}
	service := NewSettlementService(store, schedule, 2017, testLogger())

	first, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("first Settle error: %v", err)
	}
	if first != 1 {
		t.Fatalf("first run updated = %d, want 1", first)
	}
	putsAfterFirst := store.puts

	second, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("second Settle error: %v", err)
	}
	if second != 0 {
		t.Fatalf("second run updated = %d, want 0", second)
	}
	if store.puts != putsAfterFirst {
		t.Fatalf("second run wrote %d extra picks", store.puts-putsAfterFirst)
	}
}

func TestSettlementService_Settle_OutcomeNeverReverts(t *testing.T) {
	t.Parallel()

	repo := memory.NewPickRepository()
	gameID := "g-1"
	won := true
	if err := repo.Put(t.Context(), pick.Pick{UserID: "U1", WeekNumber: 1, SelectedTeam: "patriots", UserName: "alice", GameID: &gameID, Outcome: &won}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	// The schedule now reports the patriots losing; the settled outcome must
	// stand because settlement only reads unresolved picks.
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{
		1: {closedGame("g-1", "jets", "patriots", 20, 17)},
	}}
	service := NewSettlementService(repo, schedule, 2017, testLogger())

	updated, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	settled, _, _ := repo.Get(t.Context(), "U1", 1)
	if !settled.Won() {
		t.Fatalf("existing outcome must never change")
	}
}

func TestSettlementService_Settle_SkipsOpenGamesAndLegacyPicks(t *testing.T) {
	t.Parallel()

	repo := memory.NewPickRepository()
	openGame := "g-open"
	seed := []pick.Pick{
		{UserID: "U1", WeekNumber: 1, SelectedTeam: "jets", UserName: "alice", GameID: &openGame},
		// Legacy entry with no game id: never auto-settled.
		{UserID: "U2", WeekNumber: 1, SelectedTeam: "bears", UserName: "bob"},
	}
	for _, p := range seed {
		if err := repo.Put(t.Context(), p); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}
	inProgress := game.Game{
		ID:        "g-open",
		HomeTeam:  "jets",
		AwayTeam:  "patriots",
		KickoffAt: testAnchor,
		Status:    game.StatusInProgress,
	}
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{1: {inProgress}}}
	service := NewSettlementService(repo, schedule, 2017, testLogger())

	updated, err := service.Settle(t.Context(), 1)
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	for _, userID := range []string{"U1", "U2"} {
		p, _, _ := repo.Get(t.Context(), userID, 1)
		if p.Resolved() {
			t.Fatalf("pick for %s should remain unresolved", userID)
		}
	}
}

func TestSettlementService_Settle_ManyPicks(t *testing.T) {
	t.Parallel()

	repo := memory.NewPickRepository()
	games := make([]game.Game, 0, 10)
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		gameID := "g-" + id
		games = append(games, closedGame(gameID, "jets", "patriots", 20, 17))
		if err := repo.Put(t.Context(), pick.Pick{UserID: "U-" + id, WeekNumber: 2, SelectedTeam: "jets", UserName: "u" + id, GameID: &gameID, SelectionTime: time.Time{}}); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{2: games}}
	service := NewSettlementService(repo, schedule, 2017, testLogger())

	updated, err := service.Settle(t.Context(), 2)
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if updated != 10 {
		t.Fatalf("updated = %d, want 10", updated)
	}
}
