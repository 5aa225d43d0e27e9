package handlers

import (
	"net/http"
)

type sendCampaignRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendCampaign emails a promo to every past customer of the seller's store
// and reports how many sends succeeded.
func (h *Handlers) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req sendCampaignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.campaignService.Send(r.Context(), storeIDFromContext(r.Context()), req.Subject, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaign": result})
}
