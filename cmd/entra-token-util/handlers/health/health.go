// Package health provides the service health endpoint.
package health

import (
	"context"
	"net/http"

	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/common"
)

// Checker verifies a component is healthy.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// Response is the health check body.
type Response struct {
	Status  string         `json:"status"`
	Version string         `json:"version,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Handler processes health check requests.
type Handler struct {
	flow    Checker
	version string
}

// New creates a health handler.
func New(flow Checker) *Handler {
	return &Handler{flow: flow}
}

// WithVersion sets the version reported in responses.
func (h *Handler) WithVersion(version string) *Handler {
	h.version = version
	return h
}

// ServeHTTP handles GET /health.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := Response{
		Status:  "healthy",
		Version: h.version,
		Details: make(map[string]any),
	}

	status := http.StatusOK
	if err := h.flow.CheckHealth(r.Context()); err != nil {
		response.Status = "unhealthy"
		response.Details["session_store"] = map[string]any{
			"status":  "unhealthy",
			"message": err.Error(),
		}
		status = http.StatusServiceUnavailable
	} else {
		response.Details["session_store"] = map[string]any{"status": "healthy"}
	}

	common.WriteJSON(w, status, response)
}
