package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/services"
)

type stubWalletStore struct {
	wallet       models.Wallet
	transactions []models.WalletTransaction
}

func (s *stubWalletStore) GetOrCreateByUser(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet := s.wallet
	return &wallet, nil
}

func (s *stubWalletStore) GrantWelcomeBonus(_ context.Context, userID uuid.UUID, coins int) (*models.Wallet, error) {
	if !s.wallet.BonusClaimed {
		s.wallet.Coins += coins
		s.wallet.BonusClaimed = true
	}
	wallet := s.wallet
	return &wallet, nil
}

func (s *stubWalletStore) Redeem(context.Context, uuid.UUID, int, float64, uuid.UUID) error {
	return nil
}

func (s *stubWalletStore) Earn(context.Context, uuid.UUID, int, float64, uuid.UUID) error {
	return nil
}

func (s *stubWalletStore) Transactions(context.Context, uuid.UUID, int) ([]models.WalletTransaction, error) {
	return s.transactions, nil
}

func TestWalletEndpoint(t *testing.T) {
	userID := uuid.New()
	store := &stubWalletStore{
		wallet: models.Wallet{ID: uuid.New(), UserID: userID, Coins: 120},
	}

	h := testHandlers(t)
	h.walletService = services.NewWalletService(store, 50, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID: userID,
		Email:  "asha@example.com",
	}))
	h.Wallet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	wallet, ok := body["wallet"].(map[string]any)
	if !ok {
		t.Fatalf("response missing wallet object: %v", body)
	}
	if wallet["coins"] != float64(120) {
		t.Errorf("coins = %v, want 120", wallet["coins"])
	}
	if wallet["rupees_value"] != float64(60) {
		t.Errorf("rupees_value = %v, want 60", wallet["rupees_value"])
	}
	if wallet["transactions"] == nil {
		t.Error("transactions should encode as an empty array, not null")
	}
}

func TestClaimWelcomeBonusEndpoint(t *testing.T) {
	userID := uuid.New()
	store := &stubWalletStore{wallet: models.Wallet{ID: uuid.New(), UserID: userID}}

	h := testHandlers(t)
	h.walletService = services.NewWalletService(store, 50, slog.New(slog.NewTextHandler(io.Discard, nil)))

	identityCtx := func(r *http.Request) *http.Request {
		return r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{
			UserID: userID,
			Email:  "asha@example.com",
		}))
	}

	rec := httptest.NewRecorder()
	h.ClaimWelcomeBonus(rec, identityCtx(httptest.NewRequest(http.MethodPost, "/api/wallet/bonus", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	wallet := decodeBody(t, rec)["wallet"].(map[string]any)
	if wallet["coins"] != float64(50) || wallet["bonus_claimed"] != true {
		t.Errorf("wallet after claim = %v, want 50 coins claimed", wallet)
	}

	rec = httptest.NewRecorder()
	h.ClaimWelcomeBonus(rec, identityCtx(httptest.NewRequest(http.MethodPost, "/api/wallet/bonus", nil)))
	wallet = decodeBody(t, rec)["wallet"].(map[string]any)
	if wallet["coins"] != float64(50) {
		t.Errorf("second claim changed balance: %v", wallet)
	}
}
