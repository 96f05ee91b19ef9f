package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/thecommish/pickem/external/slackhook"
	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/domain/pick"
	"github.com/thecommish/pickem/internal/domain/season"
	"github.com/thecommish/pickem/internal/infrastructure/repository/memory"
	"github.com/thecommish/pickem/internal/platform/async"
	"github.com/thecommish/pickem/internal/usecase"
)

const (
	testCommandToken = "slack-secret"
	testJobToken     = "job-secret"
)

// Week 1 of the 2017 season starts Tuesday 2017-09-05.
var handlerTestAnchor = time.Date(2017, time.September, 5, 0, 0, 0, 0, time.UTC)

type stubScheduleProvider struct {
	gamesByWeek map[int][]game.Game
	err         error
}

func (s *stubScheduleProvider) GetWeek(_ context.Context, _, week int) ([]game.Game, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.gamesByWeek[week], nil
}

type capturingPoster struct {
	mu       sync.Mutex
	urls     []string
	messages []slackhook.Message
}

func (p *capturingPoster) Post(_ context.Context, webhookURL string, msg slackhook.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, webhookURL)
	p.messages = append(p.messages, msg)
	return nil
}

type handlerFixture struct {
	repo       *memory.PickRepository
	poster     *capturingPoster
	dispatcher *async.Dispatcher
	router     http.Handler
	now        time.Time
}

func newHandlerFixture(t *testing.T, schedule usecase.ScheduleProvider, now time.Time) *handlerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewPickRepository()
	clock := season.NewClock(handlerTestAnchor, season.DefaultFinalWeek)
	poster := &capturingPoster{}
	dispatcher := async.NewDispatcher(2, 5*time.Second, logger)

	handler := NewHandler(
		usecase.NewPickService(repo, schedule, clock, 2017, logger),
		usecase.NewStandingsService(repo),
		usecase.NewSettlementService(repo, schedule, 2017, logger),
		usecase.NewReminderService(repo, logger),
		clock,
		poster,
		"https://hooks.example.com/broadcast",
		dispatcher,
		logger,
	)
	handler.now = func() time.Time { return now }

	return &handlerFixture{
		repo:       repo,
		poster:     poster,
		dispatcher: dispatcher,
		router:     NewRouter(handler, logger, testCommandToken, testJobToken),
		now:        now,
	}
}

func (f *handlerFixture) slashCommand(t *testing.T, text string, extra url.Values) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("token", testCommandToken)
	form.Set("user_id", "U123")
	form.Set("user_name", "alice")
	form.Set("command", "/pickem")
	form.Set("text", text)
	for key, values := range extra {
		for _, value := range values {
			form.Add(key, value)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/slack/command", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeSlackReply(t *testing.T, rec *httptest.ResponseRecorder) slackResponse {
	t.Helper()

	var reply slackResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode slack reply: %v (body=%s)", err, rec.Body.String())
	}
	return reply
}

func week1Games() map[int][]game.Game {
	kickoff := time.Date(2017, time.September, 10, 17, 0, 0, 0, time.UTC)
	return map[int][]game.Game{
		1: {
			{ID: "g-1", HomeTeam: "patriots", AwayTeam: "jets", KickoffAt: kickoff, Status: game.StatusScheduled},
			{ID: "g-2", HomeTeam: "bears", AwayTeam: "lions", KickoffAt: kickoff.Add(3 * time.Hour), Status: game.StatusScheduled},
		},
	}
}

func TestSlackCommandRejectsBadToken(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	form := url.Values{}
	form.Set("token", "wrong")
	form.Set("text", "help")
	req := httptest.NewRequest(http.MethodPost, "/slack/command", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSlackCommandHelp(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	rec := fixture.slashCommand(t, "help", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	reply := decodeSlackReply(t, rec)
	if !strings.Contains(reply.Text, "pick'em selections") {
		t.Fatalf("unexpected help text: %s", reply.Text)
	}
}

func TestSlackCommandUnknownSubcommand(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	reply := decodeSlackReply(t, fixture.slashCommand(t, "banana", nil))
	if !strings.Contains(reply.Text, "Invalid command!") {
		t.Fatalf("unexpected reply: %s", reply.Text)
	}
}

func TestSlackCommandPickAccepted(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 8, 12, 0, 0, 0, time.UTC)
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	reply := decodeSlackReply(t, fixture.slashCommand(t, "pick New England Patriots.", nil))
	want := ":ok_hand: OK, you've picked the Patriots for week 1"
	if reply.Text != want {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	stored, ok, err := fixture.repo.Get(t.Context(), "U123", 1)
	if err != nil || !ok {
		t.Fatalf("expected stored pick, ok=%v err=%v", ok, err)
	}
	if stored.SelectedTeam != "patriots" || stored.UserName != "alice" {
		t.Fatalf("unexpected stored pick: %+v", stored)
	}
}

func TestSlackCommandPickUnknownTeam(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 8, 12, 0, 0, 0, time.UTC)
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	reply := decodeSlackReply(t, fixture.slashCommand(t, "pick martians", nil))
	if reply.Text != ":confused: I don't know that team. Try again." {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
}

func TestSlackCommandPickWithoutTeamReportsStanding(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 8, 12, 0, 0, 0, time.UTC)
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	reply := decodeSlackReply(t, fixture.slashCommand(t, "pick", nil))
	if !strings.Contains(reply.Text, "didn't tell me which team") {
		t.Fatalf("unexpected reply before pick: %q", reply.Text)
	}

	decodeSlackReply(t, fixture.slashCommand(t, "pick jets", nil))

	reply = decodeSlackReply(t, fixture.slashCommand(t, "pick", nil))
	if !strings.Contains(reply.Text, "You've got the Jets for week 1") {
		t.Fatalf("unexpected reply after pick: %q", reply.Text)
	}
}

func TestSlackCommandRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 20, 12, 0, 0, 0, time.UTC) // week 3
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	reply := decodeSlackReply(t, fixture.slashCommand(t, "record", nil))
	if reply.Text != "No record yet!" {
		t.Fatalf("unexpected empty record reply: %q", reply.Text)
	}

	won := true
	if err := fixture.repo.Put(t.Context(), pick.Pick{
		UserID: "U123", WeekNumber: 1, SelectedTeam: "patriots", UserName: "alice", Outcome: &won,
	}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	reply = decodeSlackReply(t, fixture.slashCommand(t, "record", nil))
	if !strings.Contains(reply.Text, "1-0") || !strings.Contains(reply.Text, "Patriots") {
		t.Fatalf("unexpected record reply: %q", reply.Text)
	}
}

func TestSlackCommandStandingsInline(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 8, 12, 0, 0, 0, time.UTC)
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	won := true
	_ = fixture.repo.Put(t.Context(), pick.Pick{UserID: "U1", WeekNumber: 1, SelectedTeam: "bears", UserName: "bob", Outcome: &won})

	rec := fixture.slashCommand(t, "standings", nil)
	reply := decodeSlackReply(t, rec)
	if reply.ResponseType != responseTypeInChannel {
		t.Fatalf("expected in_channel reply, got %q", reply.ResponseType)
	}
	if !strings.Contains(reply.Text, "Standings as of week 1") || !strings.Contains(reply.Text, "bob") {
		t.Fatalf("unexpected standings reply: %q", reply.Text)
	}
}

func TestSlackCommandStandingsDeferred(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 8, 12, 0, 0, 0, time.UTC)
	fixture := newHandlerFixture(t, &stubScheduleProvider{gamesByWeek: week1Games()}, now)

	extra := url.Values{}
	extra.Set("response_url", "https://hooks.example.com/commands/T1")
	reply := decodeSlackReply(t, fixture.slashCommand(t, "standings", extra))
	if reply.ResponseType != responseTypeEphemeral {
		t.Fatalf("expected ephemeral ack, got %q", reply.ResponseType)
	}

	fixture.dispatcher.Wait()

	fixture.poster.mu.Lock()
	defer fixture.poster.mu.Unlock()
	if len(fixture.poster.messages) != 1 {
		t.Fatalf("expected 1 deferred post, got %d", len(fixture.poster.messages))
	}
	if fixture.poster.urls[0] != "https://hooks.example.com/commands/T1" {
		t.Fatalf("unexpected callback url: %s", fixture.poster.urls[0])
	}
	if !strings.Contains(fixture.poster.messages[0].Text, "Standings as of week 1") {
		t.Fatalf("unexpected deferred text: %q", fixture.poster.messages[0].Text)
	}
}

func TestSettleJobRequiresToken(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", strings.NewReader(`{"week":1}`))
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}
}

func TestSettleJobSettlesWeek(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2017, time.September, 10, 17, 0, 0, 0, time.UTC)
	home := 27
	away := 20
	schedule := &stubScheduleProvider{gamesByWeek: map[int][]game.Game{
		1: {{
			ID: "g-1", HomeTeam: "patriots", AwayTeam: "jets", KickoffAt: kickoff,
			Status: game.StatusClosed, HomePoints: &home, AwayPoints: &away,
		}},
	}}
	fixture := newHandlerFixture(t, schedule, handlerTestAnchor)

	gameID := "g-1"
	_ = fixture.repo.Put(t.Context(), pick.Pick{
		UserID: "U123", WeekNumber: 1, SelectedTeam: "patriots", UserName: "alice", GameID: &gameID,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", strings.NewReader(`{"week":1}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body=%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"updated":1`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	settled, _, _ := fixture.repo.Get(t.Context(), "U123", 1)
	if settled.Outcome == nil || !*settled.Outcome {
		t.Fatalf("expected settled win, got %+v", settled)
	}
}

func TestSettleJobValidatesPayload(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	for _, body := range []string{`{}`, `{"week":0}`, `{"week":1,"bogus":true}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", strings.NewReader(body))
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		fixture.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %s, got %d", body, rec.Code)
		}
	}
}

func TestRemindJobBroadcastsReminder(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, time.September, 14, 12, 0, 0, 0, time.UTC) // week 2
	fixture := newHandlerFixture(t, &stubScheduleProvider{}, now)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/remind", strings.NewReader(`{}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d (body=%s)", rec.Code, rec.Body.String())
	}

	fixture.dispatcher.Wait()

	fixture.poster.mu.Lock()
	defer fixture.poster.mu.Unlock()
	if len(fixture.poster.messages) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(fixture.poster.messages))
	}
	if fixture.poster.urls[0] != "https://hooks.example.com/broadcast" {
		t.Fatalf("unexpected broadcast url: %s", fixture.poster.urls[0])
	}
	if !strings.Contains(fixture.poster.messages[0].Text, "Week 2") {
		t.Fatalf("unexpected broadcast text: %q", fixture.poster.messages[0].Text)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	fixture := newHandlerFixture(t, &stubScheduleProvider{}, handlerTestAnchor)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
