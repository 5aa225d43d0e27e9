package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/auth"
)

// Wallet returns the signed-in customer's coin balance and recent
// transactions.
func (h *Handlers) Wallet(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	view, err := h.walletService.Get(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet": view})
}

// ClaimWelcomeBonus credits the one-time signup bonus.
func (h *Handlers) ClaimWelcomeBonus(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	view, err := h.walletService.ClaimWelcomeBonus(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet": view})
}
