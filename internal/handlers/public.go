package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/services"
)

// PublicProducts lists a store's active products.
func (h *Handlers) PublicProducts(w http.ResponseWriter, r *http.Request) {
	storeID, err := storeQueryParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.catalogService.ListPublic(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// PublicDeals lists the deals a store is currently running, in display
// order.
func (h *Handlers) PublicDeals(w http.ResponseWriter, r *http.Request) {
	storeID, err := storeQueryParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	deals, err := h.dealService.ListLive(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deals": deals})
}

func storeQueryParam(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("store")
	if raw == "" {
		return uuid.Nil, services.Invalidf("store query parameter is required")
	}
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.Invalidf("store query parameter must be a uuid")
	}
	return storeID, nil
}
