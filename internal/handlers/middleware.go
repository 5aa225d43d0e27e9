package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar/internal/auth"
)

// Authenticate verifies a bearer token when one is present and stores the
// identity in context. Requests without an Authorization header pass
// through anonymously; a token that fails verification is rejected.
func (h *Handlers) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := h.verifyRequest(w, r, header)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// RequireUser rejects anonymous requests.
func (h *Handlers) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFromContext(r.Context()) == nil {
			h.writeError(w, r, auth.ErrMissingToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSeller rejects requests that are not from a seller with a store.
func (h *Handlers) RequireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := auth.IdentityFromContext(r.Context())
		if identity == nil {
			h.writeError(w, r, auth.ErrMissingToken)
			return
		}
		if !identity.IsSeller() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "seller account required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verifyRequest validates the bearer token and makes sure the identity has
// a user row, creating one on first access.
func (h *Handlers) verifyRequest(w http.ResponseWriter, r *http.Request, header string) (*auth.Identity, error) {
	rawToken, err := auth.FromAuthorizationHeader(header)
	if err != nil {
		return nil, err
	}

	identity, err := h.verifier.Verify(r.Context(), rawToken)
	if err != nil {
		return nil, err
	}

	if _, err := h.users.GetOrCreate(r.Context(), identity.UserID, identity.Email, identity.Name, identity.Role, identity.StoreID); err != nil {
		return nil, err
	}

	return identity, nil
}
