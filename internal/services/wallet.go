package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/checkout"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/models"
)

type WalletService struct {
	wallets           walletStore
	welcomeBonusCoins int
	logger            *slog.Logger
}

func NewWalletService(wallets walletStore, welcomeBonusCoins int, logger *slog.Logger) *WalletService {
	return &WalletService{
		wallets:           wallets,
		welcomeBonusCoins: welcomeBonusCoins,
		logger:            logger,
	}
}

// WalletView is the customer-facing wallet summary.
type WalletView struct {
	Coins        int                        `json:"coins"`
	RupeesValue  float64                    `json:"rupees_value"`
	BonusClaimed bool                       `json:"bonus_claimed"`
	Transactions []models.WalletTransaction `json:"transactions"`
}

// Get returns the user's wallet with its recent transactions, creating the
// wallet on first access.
func (s *WalletService) Get(ctx context.Context, userID uuid.UUID) (*WalletView, error) {
	wallet, err := s.wallets.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, wallet)
}

// ClaimWelcomeBonus credits the one-time signup bonus. Claiming twice is a
// no-op that returns the current balance.
func (s *WalletService) ClaimWelcomeBonus(ctx context.Context, userID uuid.UUID) (*WalletView, error) {
	wallet, err := s.wallets.GrantWelcomeBonus(ctx, userID, s.welcomeBonusCoins)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("welcome bonus claimed",
		"user_id", userID, "coins", wallet.Coins)
	return s.view(ctx, wallet)
}

func (s *WalletService) view(ctx context.Context, wallet *models.Wallet) (*WalletView, error) {
	transactions, err := s.wallets.Transactions(ctx, wallet.ID, defaultListLimit)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []models.WalletTransaction{}
	}

	return &WalletView{
		Coins:        wallet.Coins,
		RupeesValue:  checkout.CoinsToRupees(wallet.Coins),
		BonusClaimed: wallet.BonusClaimed,
		Transactions: transactions,
	}, nil
}
