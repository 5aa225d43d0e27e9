package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/services"
)

// StoreDeals lists every deal in the seller's store with its current state.
func (h *Handlers) StoreDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.dealService.ListForStore(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deals": deals})
}

func (h *Handlers) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var input services.DealInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	deal, err := h.dealService.CreateDeal(r.Context(), storeIDFromContext(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"deal": deal})
}

func (h *Handlers) UpdateDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input services.DealInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	deal, err := h.dealService.UpdateDeal(r.Context(), storeIDFromContext(r.Context()), dealID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deal": deal})
}

func (h *Handlers) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.dealService.DeleteDeal(r.Context(), storeIDFromContext(r.Context()), dealID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
