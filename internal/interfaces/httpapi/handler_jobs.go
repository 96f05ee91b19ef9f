package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/thecommish/pickem/external/slackhook"
	"github.com/thecommish/pickem/internal/usecase"
)

type settleJobRequest struct {
	Week int `json:"week" validate:"required,min=1"`
}

type remindJobRequest struct {
	Week int `json:"week" validate:"omitempty,min=1"`
}

// RunSettleJob settles the given week synchronously and reports how many
// picks were updated. Triggered by the post-week scheduler.
func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req settleJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.settlementService.Settle(ctx, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "settle job failed", "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"week":    req.Week,
		"updated": updated,
	})
}

// RunRemindJob schedules the weekly pick reminder broadcast. The week
// defaults to the current one when the payload omits it.
func (h *Handler) RunRemindJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRemindJob")
	defer span.End()

	if h.reminderService == nil || h.dispatcher == nil || h.slack == nil {
		writeError(ctx, w, fmt.Errorf("%w: reminder delivery is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	if h.broadcastURL == "" {
		writeError(ctx, w, fmt.Errorf("%w: broadcast webhook url is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req remindJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	week := req.Week
	if week == 0 {
		week = h.clock.WeekAt(h.now().UTC())
	}

	h.dispatcher.Submit("week-reminder", func(taskCtx context.Context) error {
		text, err := h.reminderService.WeekReminder(taskCtx, week)
		if err != nil {
			return err
		}
		return h.slack.Post(taskCtx, h.broadcastURL, slackhook.Message{
			ResponseType: responseTypeInChannel,
			Text:         text,
		})
	})

	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"week":   week,
		"status": "scheduled",
	})
}

func (h *Handler) decodeJobRequest(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil && err != io.EOF {
		return fmt.Errorf("%w: decode job payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
