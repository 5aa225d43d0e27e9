package handlers

import (
	"net/http"
)

// LocationAnalytics aggregates the store's orders by shipping state and
// city.
func (h *Handlers) LocationAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Locations(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": stats})
}
