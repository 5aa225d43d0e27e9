package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/services"
)

// PlaceOrder handles checkout. Both signed-in customers and guests can place
// orders; guests must provide contact details in the body.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input services.PlaceOrderInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	result, err := h.orderService.PlaceOrder(r.Context(), identity, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListOrders returns the signed-in customer's order history.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	orders, err := h.orderService.ListForCustomer(r.Context(), identity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder returns a single order, including its return requests.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	order, err := h.orderService.GetForCustomer(r.Context(), identity, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// CreateReturnRequest files a return or replacement request against a
// delivered order item.
func (h *Handlers) CreateReturnRequest(w http.ResponseWriter, r *http.Request) {
	var input services.CreateReturnInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	request, err := h.returnService.Create(r.Context(), identity, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"return_request": request})
}

// pathID parses a uuid path variable.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, services.Invalidf("%s must be a uuid", name)
	}
	return id, nil
}
