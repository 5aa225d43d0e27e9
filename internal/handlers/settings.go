package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/services"
)

// StoreSettingsView returns the seller's store settings. The email API key
// is redacted; only its presence is reported.
func (h *Handlers) StoreSettingsView(w http.ResponseWriter, r *http.Request) {
	store, err := h.stores.GetByID(r.Context(), storeIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"store": redactEmailConfig(store)})
}

type shippingSettingsRequest struct {
	FlatFee         float64 `json:"flat_fee"`
	FreeShippingMin float64 `json:"free_shipping_min"`
}

func (h *Handlers) UpdateShippingSettings(w http.ResponseWriter, r *http.Request) {
	var req shippingSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.FlatFee < 0 {
		h.writeError(w, r, services.Invalidf("flat_fee must not be negative"))
		return
	}
	if req.FreeShippingMin < 0 {
		h.writeError(w, r, services.Invalidf("free_shipping_min must not be negative"))
		return
	}

	storeID := storeIDFromContext(r.Context())
	if err := h.stores.UpdateShippingSettings(r.Context(), storeID, req.FlatFee, req.FreeShippingMin); err != nil {
		h.writeError(w, r, err)
		return
	}

	store, err := h.stores.GetByID(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"store": redactEmailConfig(store)})
}

type emailSettingsRequest struct {
	Provider string         `json:"provider"`
	From     string         `json:"from"`
	Config   map[string]any `json:"config"`
}

func (h *Handlers) UpdateEmailSettings(w http.ResponseWriter, r *http.Request) {
	var req emailSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	switch req.Provider {
	case "resend", "mailgun", "postmark":
	default:
		h.writeError(w, r, services.Invalidf("provider must be resend, mailgun, or postmark"))
		return
	}
	if req.From == "" {
		h.writeError(w, r, services.Invalidf("from address is required"))
		return
	}

	storeID := storeIDFromContext(r.Context())
	if err := h.stores.UpdateEmailSettings(r.Context(), storeID, req.Provider, req.From, req.Config); err != nil {
		h.writeError(w, r, err)
		return
	}

	store, err := h.stores.GetByID(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"store": redactEmailConfig(store)})
}

// redactEmailConfig replaces secret values in the store's email config so
// they never travel back to the client.
func redactEmailConfig(store *models.Store) *models.Store {
	if store.EmailConfig == nil {
		return store
	}

	redacted := *store
	redacted.EmailConfig = make(map[string]any, len(store.EmailConfig))
	for key, value := range store.EmailConfig {
		if key == "api_key" {
			redacted.EmailConfig[key] = "redacted"
			continue
		}
		redacted.EmailConfig[key] = value
	}
	return &redacted
}
