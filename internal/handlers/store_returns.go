package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/services"
)

// StoreReturns lists the return requests filed against the seller's store.
func (h *Handlers) StoreReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.returnService.ListForStore(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"return_requests": returns})
}

// DecideReturn approves or rejects a pending return request.
func (h *Handlers) DecideReturn(w http.ResponseWriter, r *http.Request) {
	var input services.ReturnDecisionInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	request, err := h.returnService.Decide(r.Context(), storeIDFromContext(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"return_request": request})
}
