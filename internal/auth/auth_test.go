package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "customer@example.com",
		"name":  "Asha",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerify(t *testing.T) {
	verifier, err := NewVerifier(testSecret, nil)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	ctx := context.Background()

	t.Run("valid customer token", func(t *testing.T) {
		claims := baseClaims()
		identity, err := verifier.Verify(ctx, signToken(t, claims))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Email != "customer@example.com" {
			t.Errorf("email = %q", identity.Email)
		}
		if identity.Role != models.RoleCustomer {
			t.Errorf("role = %q, want customer", identity.Role)
		}
		if identity.IsSeller() {
			t.Errorf("customer identity reported as seller")
		}
	})

	t.Run("valid seller token", func(t *testing.T) {
		claims := baseClaims()
		claims["role"] = "seller"
		claims["store_id"] = uuid.NewString()
		identity, err := verifier.Verify(ctx, signToken(t, claims))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !identity.IsSeller() {
			t.Errorf("seller identity not recognized")
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := baseClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		if _, err := verifier.Verify(ctx, signToken(t, claims)); err == nil {
			t.Fatalf("expected error for expired token")
		}
	})

	t.Run("wrong signature rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
		signed, err := token.SignedString([]byte(strings.Repeat("x", 32)))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := verifier.Verify(ctx, signed); err == nil {
			t.Fatalf("expected error for bad signature")
		}
	})

	t.Run("missing email rejected", func(t *testing.T) {
		claims := baseClaims()
		delete(claims, "email")
		if _, err := verifier.Verify(ctx, signToken(t, claims)); err == nil {
			t.Fatalf("expected error for missing email")
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		claims := baseClaims()
		claims["role"] = "superadmin"
		if _, err := verifier.Verify(ctx, signToken(t, claims)); err == nil {
			t.Fatalf("expected error for unknown role")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if _, err := verifier.Verify(ctx, ""); err == nil {
			t.Fatalf("expected error for empty token")
		}
	})
}

func TestFromAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer tok", want: "tok"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcg==", wantErr: true},
		{name: "scheme only", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAuthorizationHeader(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	identity := &Identity{UserID: uuid.New(), Email: "a@b.c", Role: models.RoleCustomer}

	ctx := WithIdentity(context.Background(), identity)
	if got := IdentityFromContext(ctx); got != identity {
		t.Errorf("IdentityFromContext returned %+v", got)
	}
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("expected nil identity, got %+v", got)
	}
}
