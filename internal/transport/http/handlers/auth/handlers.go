package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"perfdash/internal/domain/auth"
	"perfdash/internal/platform/requestctx"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
	"perfdash/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	if !h.Service.Enabled() {
		api.Fail(w, http.StatusNotFound, "auth_disabled", "authentication is disabled", requestID)
		return
	}

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	session, err := h.Service.Login(payload.Username, payload.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		slog.Warn("login failed", "username", strings.ToLower(strings.TrimSpace(payload.Username)))
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	case err != nil:
		slog.Error("token issue failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	slog.Info("login", "username", session.Username, "role", session.Role)
	api.Success(w, session, requestID)
}

// HandleMe reports the caller and the permissions of their role.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	api.Success(w, map[string]any{
		"username":    user.Username,
		"role":        user.Role,
		"permissions": auth.RolePermissions[user.Role],
		"authEnabled": h.Service.Enabled(),
	}, requestID)
}
