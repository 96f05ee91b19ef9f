package stattleship

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/platform/resilience"
	"github.com/thecommish/pickem/internal/usecase"
)

const weekPayload = `{
	"games": [
		{
			"id": "g-late",
			"status": "closed",
			"scheduled_at": "2017-09-10T20:25:00Z",
			"home_team_id": "t-raiders",
			"away_team_id": "t-titans",
			"home_team_score": 26,
			"away_team_score": 16
		},
		{
			"id": "g-early",
			"status": "upcoming",
			"scheduled_at": "2017-09-10T17:00:00Z",
			"home_team_id": "t-patriots",
			"away_team_id": "t-jets"
		}
	],
	"teams": [
		{"id": "t-patriots", "nickname": "Patriots", "name": "New England"},
		{"id": "t-jets", "nickname": "Jets", "name": "New York"},
		{"id": "t-raiders", "nickname": "Raiders", "name": "Oakland"},
		{"id": "t-titans", "nickname": "Titans", "name": "Tennessee"}
	]
}`

func TestGetWeekMapsGames(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(weekPayload))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "secret-token",
		Timeout: 2 * time.Second,
	})

	games, err := client.GetWeek(t.Context(), 2017, 1)
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}

	if !strings.Contains(gotQuery, "season_id=nfl-2017-2018") || !strings.Contains(gotQuery, "week=1") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotAuth != "Token token=secret-token" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}

	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	// Sorted by kickoff time.
	first := games[0]
	if first.ID != "g-early" || first.HomeTeam != "patriots" || first.AwayTeam != "jets" {
		t.Fatalf("unexpected first game: %+v", first)
	}
	if first.Status != game.StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", first.Status)
	}
	if first.HomePoints != nil || first.AwayPoints != nil {
		t.Fatalf("expected no points on scheduled game")
	}

	second := games[1]
	if second.ID != "g-late" || second.Status != game.StatusClosed {
		t.Fatalf("unexpected second game: %+v", second)
	}
	if second.HomePoints == nil || *second.HomePoints != 26 {
		t.Fatalf("unexpected home points: %v", second.HomePoints)
	}
	if second.AwayPoints == nil || *second.AwayPoints != 16 {
		t.Fatalf("unexpected away points: %v", second.AwayPoints)
	}
}

func TestGetWeekSkipsIncompleteGames(t *testing.T) {
	t.Parallel()

	const payload = `{
		"games": [
			{"id": "g-1", "status": "upcoming", "scheduled_at": "2017-09-10T17:00:00Z", "home_team_id": "t-1", "away_team_id": "t-unknown"},
			{"id": "g-2", "status": "upcoming", "home_team_id": "t-1", "away_team_id": "t-2"}
		],
		"teams": [
			{"id": "t-1", "nickname": "Bears"},
			{"id": "t-2", "nickname": "Lions"}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 2 * time.Second})

	games, err := client.GetWeek(t.Context(), 2017, 1)
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected incomplete games to be skipped, got %d", len(games))
	}
}

func TestGetWeekRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"games": [], "teams": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	})

	if _, err := client.GetWeek(t.Context(), 2017, 3); err != nil {
		t.Fatalf("GetWeek after retry: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
}

func TestGetWeekDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 3,
	})

	if _, err := client.GetWeek(t.Context(), 2017, 3); err == nil {
		t.Fatal("expected error for 401 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 provider call, got %d", got)
	}
}

func TestGetWeekCircuitOpenShortCircuits(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.GetWeek(t.Context(), 2017, 3); err == nil {
		t.Fatal("expected error for failing provider")
	}
	before := atomic.LoadInt32(&calls)

	_, err := client.GetWeek(t.Context(), 2017, 3)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != before {
		t.Fatalf("expected no extra provider calls while circuit open, got %d", got-before)
	}
}

func TestGetWeekRejectsInvalidWeek(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0"})
	if _, err := client.GetWeek(t.Context(), 2017, 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://api.example.com/games": Token token=abc123 refused`, "abc123")
	if strings.Contains(got, "abc123") {
		t.Fatalf("token leaked: %s", got)
	}
}
