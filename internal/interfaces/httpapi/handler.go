package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/thecommish/pickem/external/slackhook"
	"github.com/thecommish/pickem/internal/domain/season"
	"github.com/thecommish/pickem/internal/platform/async"
	"github.com/thecommish/pickem/internal/usecase"
)

// SlackPoster delivers deferred replies and broadcasts to Slack.
type SlackPoster interface {
	Post(ctx context.Context, webhookURL string, msg slackhook.Message) error
}

type Handler struct {
	pickService       *usecase.PickService
	standingsService  *usecase.StandingsService
	settlementService *usecase.SettlementService
	reminderService   *usecase.ReminderService
	clock             season.Clock
	slack             SlackPoster
	broadcastURL      string
	dispatcher        *async.Dispatcher
	logger            *slog.Logger
	validator         *validator.Validate
	now               func() time.Time
}

func NewHandler(
	pickService *usecase.PickService,
	standingsService *usecase.StandingsService,
	settlementService *usecase.SettlementService,
	reminderService *usecase.ReminderService,
	clock season.Clock,
	slack SlackPoster,
	broadcastURL string,
	dispatcher *async.Dispatcher,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		pickService:       pickService,
		standingsService:  standingsService,
		settlementService: settlementService,
		reminderService:   reminderService,
		clock:             clock,
		slack:             slack,
		broadcastURL:      strings.TrimSpace(broadcastURL),
		dispatcher:        dispatcher,
		logger:            logger,
		validator:         validator.New(),
		now:               time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// SlackCommand handles the /pickem slash command. The token was already
// verified and the form parsed by RequireSlackCommandToken.
func (h *Handler) SlackCommand(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SlackCommand")
	defer span.End()

	userID := strings.TrimSpace(r.PostFormValue("user_id"))
	userName := strings.TrimSpace(r.PostFormValue("user_name"))
	commandText := strings.TrimSpace(r.PostFormValue("text"))
	responseURL := strings.TrimSpace(r.PostFormValue("response_url"))

	now := h.now().UTC()
	week := h.clock.WeekAt(now)

	fields := strings.Fields(commandText)
	subcommand := ""
	if len(fields) > 0 {
		subcommand = strings.ToLower(fields[0])
	}

	switch subcommand {
	case "", "help":
		writeSlack(ctx, w, responseTypeEphemeral, helpText)

	case "pick":
		result, err := h.pickService.Submit(ctx, usecase.SubmitInput{
			UserID:    userID,
			UserName:  userName,
			Week:      week,
			TeamQuery: strings.Join(fields[1:], " "),
			Now:       now,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "submit pick failed", "user_id", userID, "week", week, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSlack(ctx, w, responseTypeEphemeral, formatSubmitResult(result))

	case "record":
		entries, err := h.pickService.Record(ctx, userID, week)
		if err != nil {
			h.logger.ErrorContext(ctx, "fetch record failed", "user_id", userID, "week", week, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSlack(ctx, w, responseTypeEphemeral, formatRecord(entries))

	case "standings":
		h.handleStandings(ctx, w, week, responseURL)

	default:
		writeSlack(ctx, w, responseTypeEphemeral, ":persevere: Invalid command! "+helpText)
	}
}

// handleStandings answers inline when no callback URL was provided, and
// defers the full-table scan to a background reply otherwise so the slash
// command acknowledges within Slack's timeout.
func (h *Handler) handleStandings(ctx context.Context, w http.ResponseWriter, week int, responseURL string) {
	if responseURL == "" || h.dispatcher == nil || h.slack == nil {
		rows, err := h.standingsService.Standings(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "fetch standings failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSlack(ctx, w, responseTypeInChannel, formatStandings(week, rows))
		return
	}

	h.dispatcher.Submit("standings-reply", func(taskCtx context.Context) error {
		rows, err := h.standingsService.Standings(taskCtx)
		if err != nil {
			return err
		}
		return h.slack.Post(taskCtx, responseURL, slackhook.Message{
			ResponseType: responseTypeInChannel,
			Text:         formatStandings(week, rows),
		})
	})

	writeSlack(ctx, w, responseTypeEphemeral, ":hourglass: Crunching the numbers, standings are on the way...")
}
