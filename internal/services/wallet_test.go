package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/models"
)

func TestWalletGetCreatesOnFirstAccess(t *testing.T) {
	userID := uuid.New()
	wallets := newFakeWalletStore(userID, 40)
	service := NewWalletService(wallets, 50, discardLogger())

	view, err := service.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Coins != 40 {
		t.Errorf("Coins = %d, want 40", view.Coins)
	}
	if view.RupeesValue != 20 {
		t.Errorf("RupeesValue = %v, want 20", view.RupeesValue)
	}
	if view.Transactions == nil {
		t.Errorf("Transactions should be an empty slice, not nil")
	}
}

func TestClaimWelcomeBonusIsIdempotent(t *testing.T) {
	userID := uuid.New()
	wallets := newFakeWalletStore(userID, 0)
	service := NewWalletService(wallets, 50, discardLogger())
	ctx := context.Background()

	first, err := service.ClaimWelcomeBonus(ctx, userID)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if first.Coins != 50 || !first.BonusClaimed {
		t.Errorf("first claim = %d coins claimed=%v, want 50/true", first.Coins, first.BonusClaimed)
	}

	second, err := service.ClaimWelcomeBonus(ctx, userID)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second.Coins != 50 {
		t.Errorf("second claim = %d coins, want still 50", second.Coins)
	}

	earns := 0
	for _, txn := range wallets.transactions {
		if txn.Type == models.WalletEarn {
			earns++
		}
	}
	if earns != 1 {
		t.Errorf("earn transactions = %d, want exactly 1", earns)
	}
}
