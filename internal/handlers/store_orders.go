package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/services"
)

// StoreOrders lists the most recent orders placed against the seller's
// store.
func (h *Handlers) StoreOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListForStore(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type orderActionRequest struct {
	Action         string `json:"action"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// UpdateOrderStatus moves an order along its lifecycle on behalf of the
// seller. Shipping takes optional tracking details.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req orderActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	storeID := storeIDFromContext(r.Context())

	var order *models.Order
	switch req.Action {
	case "confirm":
		order, err = h.orderService.Confirm(r.Context(), storeID, orderID)
	case "ship":
		order, err = h.orderService.Ship(r.Context(), storeID, orderID, services.ShipmentInput{
			TrackingNumber: req.TrackingNumber,
			Carrier:        req.Carrier,
		})
	case "deliver":
		order, err = h.orderService.Deliver(r.Context(), storeID, orderID)
	case "cancel":
		order, err = h.orderService.Cancel(r.Context(), storeID, orderID)
	default:
		err = services.Invalidf("action must be confirm, ship, deliver, or cancel")
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}
