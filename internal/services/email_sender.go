package services

import (
	"context"

	"github.com/bazaarhq/bazaar/internal/email"
	"github.com/bazaarhq/bazaar/internal/models"
)

// OrderEmailSender delivers the transactional customer emails. All sends are
// best effort: callers log failures and carry on.
type OrderEmailSender interface {
	SendOrderConfirmation(ctx context.Context, store *models.Store, order *models.Order) error
	SendOrderShipped(ctx context.Context, store *models.Store, order *models.Order) error
	SendOrderDelivered(ctx context.Context, store *models.Store, order *models.Order) error
	SendReturnUpdate(ctx context.Context, store *models.Store, order *models.Order, request *models.ReturnRequest) error
}

type StoreEmailProviderFactory func(store *models.Store) (email.Provider, error)

// StoreOrderEmailSender sends through whichever provider the store has
// configured.
type StoreOrderEmailSender struct {
	providerFromStore StoreEmailProviderFactory
}

func NewStoreOrderEmailSender(providerFromStore StoreEmailProviderFactory) *StoreOrderEmailSender {
	if providerFromStore == nil {
		providerFromStore = email.NewProviderFromStore
	}
	return &StoreOrderEmailSender{
		providerFromStore: providerFromStore,
	}
}

func (s *StoreOrderEmailSender) SendOrderConfirmation(ctx context.Context, store *models.Store, order *models.Order) error {
	provider, err := s.providerFromStore(store)
	if err != nil {
		return err
	}
	return email.SendOrderConfirmation(ctx, provider, BuildOrderInfo(store, order))
}

func (s *StoreOrderEmailSender) SendOrderShipped(ctx context.Context, store *models.Store, order *models.Order) error {
	provider, err := s.providerFromStore(store)
	if err != nil {
		return err
	}
	return email.SendOrderShipped(ctx, provider, BuildOrderInfo(store, order))
}

func (s *StoreOrderEmailSender) SendOrderDelivered(ctx context.Context, store *models.Store, order *models.Order) error {
	provider, err := s.providerFromStore(store)
	if err != nil {
		return err
	}
	return email.SendOrderDelivered(ctx, provider, BuildOrderInfo(store, order))
}

func (s *StoreOrderEmailSender) SendReturnUpdate(ctx context.Context, store *models.Store, order *models.Order, request *models.ReturnRequest) error {
	provider, err := s.providerFromStore(store)
	if err != nil {
		return err
	}
	return email.SendReturnUpdate(ctx, provider, BuildReturnInfo(store, order, request))
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendOrderConfirmation(context.Context, *models.Store, *models.Order) error {
	return nil
}

func (noopOrderEmailSender) SendOrderShipped(context.Context, *models.Store, *models.Order) error {
	return nil
}

func (noopOrderEmailSender) SendOrderDelivered(context.Context, *models.Store, *models.Order) error {
	return nil
}

func (noopOrderEmailSender) SendReturnUpdate(context.Context, *models.Store, *models.Order, *models.ReturnRequest) error {
	return nil
}
