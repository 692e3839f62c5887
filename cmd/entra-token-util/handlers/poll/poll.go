// Package poll handles the per-request polling step of a device flow.
package poll

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/common"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
)

// Advancer runs one state-machine step for a session.
type Advancer interface {
	Advance(ctx context.Context, sessionID string) (*deviceflow.Outcome, error)
}

// PendingResponse is returned while the user has not finished
// authenticating. Callers should wait Interval seconds before re-polling.
type PendingResponse struct {
	Status   string `json:"status"`
	Interval int    `json:"interval,omitempty"`
}

// ProviderErrorResponse surfaces an unexpected provider response verbatim.
type ProviderErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
}

// Handler processes poll requests.
type Handler struct {
	flow   Advancer
	logger *zap.Logger
}

// New creates a poll handler.
func New(flow Advancer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{flow: flow, logger: logger}
}

// ServeHTTP handles GET /api/poll-token/{sessionID}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "A session id is required")
		return
	}

	outcome, err := h.flow.Advance(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, deviceflow.ErrSessionNotFound) {
			common.WriteError(w, http.StatusNotFound, "session_not_found",
				"Unknown or completed session; restart authentication")
			return
		}
		h.logger.Error("advancing device flow", zap.String("session_id", sessionID), zap.Error(err))
		common.WriteError(w, http.StatusBadGateway, "network_error", "Could not reach the identity provider")
		return
	}

	switch outcome.State {
	case deviceflow.StatePending:
		common.WriteJSON(w, http.StatusOK, PendingResponse{
			Status:   string(deviceflow.StatePending),
			Interval: int(outcome.RetryAfter.Seconds()),
		})

	case deviceflow.StateAuthorized:
		common.WriteJSON(w, http.StatusOK, outcome.Token)

	case deviceflow.StateExpired:
		common.WriteError(w, http.StatusRequestTimeout, "expired_session",
			"The device code has expired; restart authentication")

	case deviceflow.StateDenied:
		common.WriteError(w, http.StatusBadRequest, outcome.OAuthErr.Code, outcome.OAuthErr.Description)

	default:
		common.WriteJSON(w, http.StatusBadGateway, ProviderErrorResponse{
			Error:      "provider_error",
			StatusCode: outcome.StatusCode,
			Body:       outcome.RawBody,
		})
	}
}
