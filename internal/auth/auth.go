// Package auth validates bearer identity tokens and carries the verified
// identity through request context.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/cache"
	"github.com/bazaarhq/bazaar/internal/models"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// identityCacheTTL bounds how long a verified token is trusted without
// re-checking its signature and expiry.
const identityCacheTTL = 5 * time.Minute

// Identity is the subject asserted by a validated bearer token.
type Identity struct {
	UserID  uuid.UUID       `json:"user_id"`
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Role    models.UserRole `json:"role"`
	StoreID uuid.UUID       `json:"store_id,omitempty"`
}

// IsSeller reports whether the identity may act on seller endpoints.
func (i *Identity) IsSeller() bool {
	return i != nil && i.Role == models.RoleSeller && i.StoreID != uuid.Nil
}

// Verifier checks HS256-signed tokens issued by the identity provider.
// Verified identities are cached briefly, keyed by a hash of the token.
type Verifier struct {
	secret []byte
	cache  cache.Provider
}

func NewVerifier(secret string, cacheProvider cache.Provider) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth token secret is required")
	}
	return &Verifier{
		secret: []byte(secret),
		cache:  cacheProvider,
	}, nil
}

// Verify parses and validates a raw bearer token, returning the identity it
// asserts. All failures map to ErrInvalidToken; callers should respond 401.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrMissingToken
	}

	cacheKey := identityCacheKey(rawToken)
	if v.cache != nil {
		if cached, err := v.cache.Get(ctx, cacheKey); err == nil {
			var identity Identity
			if json.Unmarshal([]byte(cached), &identity) == nil {
				return &identity, nil
			}
		}
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	identity, err := identityFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if v.cache != nil {
		if payload, err := json.Marshal(identity); err == nil {
			_ = v.cache.Set(ctx, cacheKey, string(payload), identityCacheTTL)
		}
	}

	return identity, nil
}

// FromAuthorizationHeader extracts the raw token from an Authorization
// header value.
func FromAuthorizationHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("subject claim is required")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("subject claim must be a uuid: %v", err)
	}

	identity := &Identity{
		UserID: userID,
		Email:  stringClaim(claims, "email"),
		Name:   stringClaim(claims, "name"),
		Role:   models.RoleCustomer,
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("email claim is required")
	}

	if role := stringClaim(claims, "role"); role != "" {
		switch models.UserRole(role) {
		case models.RoleCustomer, models.RoleSeller:
			identity.Role = models.UserRole(role)
		default:
			return nil, fmt.Errorf("unknown role claim %q", role)
		}
	}

	if rawStore := stringClaim(claims, "store_id"); rawStore != "" {
		storeID, err := uuid.Parse(rawStore)
		if err != nil {
			return nil, fmt.Errorf("store_id claim must be a uuid: %v", err)
		}
		identity.StoreID = storeID
	}

	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func identityCacheKey(rawToken string) string {
	digest := sha256.Sum256([]byte(rawToken))
	return "auth:token:" + hex.EncodeToString(digest[:])
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the verified identity, or nil for anonymous
// requests.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	identity, ok := ctx.Value(identityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
