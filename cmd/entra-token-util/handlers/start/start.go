// Package start handles requests that begin a device authorization flow.
package start

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/common"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
	"github.com/halcyonlab/entra-token-util/internal/provider"
)

// Starter begins a device flow and returns the display payload.
type Starter interface {
	Start(ctx context.Context, clientID, scope string) (*deviceflow.StartResult, error)
}

// Request is the JSON body for POST /api/device-code.
type Request struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
}

// Handler processes device code requests.
type Handler struct {
	flow         Starter
	defaultScope string
	logger       *zap.Logger
}

// New creates a start handler. Requests without a scope fall back to
// defaultScope.
func New(flow Starter, defaultScope string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{flow: flow, defaultScope: defaultScope, logger: logger}
}

// ServeHTTP handles POST /api/device-code.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON")
		return
	}
	if req.ClientID == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "The client_id field is required")
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = h.defaultScope
	}

	result, err := h.flow.Start(r.Context(), req.ClientID, scope)
	if err != nil {
		var provErr *provider.Error
		if errors.As(err, &provErr) {
			h.logger.Warn("device code request rejected",
				zap.String("client_id", req.ClientID),
				zap.Int("status", provErr.StatusCode))
			common.WriteError(w, http.StatusBadGateway, "provider_error", provErr.Body)
			return
		}
		h.logger.Error("starting device flow", zap.Error(err))
		common.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to start device flow")
		return
	}

	common.WriteJSON(w, http.StatusOK, result)
}
