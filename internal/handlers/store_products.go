package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/services"
)

// StoreProducts lists every product in the seller's store, inactive ones
// included.
func (h *Handlers) StoreProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListForStore(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input services.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), storeIDFromContext(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input services.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), storeIDFromContext(r.Context()), productID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), storeIDFromContext(r.Context()), productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
