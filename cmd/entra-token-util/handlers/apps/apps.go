// Package apps serves the application catalog endpoints.
package apps

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/common"
	"github.com/halcyonlab/entra-token-util/internal/catalog"
)

// searchLimit caps search responses to keep them cheap to render.
const searchLimit = 50

// Handler serves the pinned list, catalog search, and scope lookups.
type Handler struct {
	catalog  *catalog.Catalog
	scopeMap *catalog.ScopeMap
}

// New creates a catalog handler.
func New(cat *catalog.Catalog, scopes *catalog.ScopeMap) *Handler {
	return &Handler{catalog: cat, scopeMap: scopes}
}

// Pinned handles GET /api/apps.
func (h *Handler) Pinned(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.catalog.Pinned())
}

// Search handles GET /api/search?q=term.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := h.catalog.Search(query, searchLimit)
	if results == nil {
		results = []catalog.App{}
	}
	common.WriteJSON(w, http.StatusOK, results)
}

// Scopes handles GET /api/scopes/{clientID}.
func (h *Handler) Scopes(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	scopes := h.scopeMap.ScopesFor(clientID)
	if scopes == nil {
		scopes = []string{}
	}
	common.WriteJSON(w, http.StatusOK, scopes)
}
