package datasethandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/actions"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
)

func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	svc := h.Service.Actions()
	if svc == nil {
		api.Success(w, []actions.Action{}, requestID)
		return
	}
	list, err := svc.List(r.Context(), ds.ID)
	if err != nil {
		slog.Error("action list failed", "dataset", ds.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "action_list_failed", "failed to list actions", requestID)
		return
	}
	api.Success(w, list, requestID)
}

type annotateRequest struct {
	Text string `json:"text"`
}

// handleAnnotate sets the follow-up note of one row. An empty text clears it.
func (h *Handler) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	svc := h.Service.Actions()
	if svc == nil {
		api.Fail(w, http.StatusServiceUnavailable, "actions_unavailable", "action store is not configured", requestID)
		return
	}
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_row", "row must be an integer", requestID)
		return
	}
	var payload annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	user, _ := middleware.GetUser(r.Context())

	action, err := svc.Annotate(r.Context(), ds.ID, ds.Table, row, payload.Text, user.Username)
	switch {
	case errors.Is(err, actions.ErrInvalidRow):
		api.Fail(w, http.StatusNotFound, "row_not_found", "row does not exist in this dataset", requestID)
		return
	case errors.Is(err, actions.ErrTextTooLong):
		api.FailWithDetails(w, http.StatusBadRequest, "text_too_long", err.Error(),
			map[string]any{"maxLength": actions.MaxTextLength}, requestID)
		return
	case err != nil:
		slog.Error("annotate failed", "dataset", ds.ID, "row", row, "err", err)
		api.Fail(w, http.StatusInternalServerError, "annotate_failed", "failed to save action", requestID)
		return
	}
	h.Metrics.ActionSaved()
	api.Success(w, action, requestID)
}
