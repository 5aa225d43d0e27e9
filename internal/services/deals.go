package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/models"
)

// DealService manages time-boxed promotional deals. Deal state is always
// derived from the clock at read time, never stored.
type DealService struct {
	deals    dealStore
	products productStore
	now      func() time.Time
	logger   *slog.Logger
}

func NewDealService(deals dealStore, products productStore, logger *slog.Logger) *DealService {
	return &DealService{
		deals:    deals,
		products: products,
		now:      time.Now,
		logger:   logger,
	}
}

type DealInput struct {
	Title      string      `json:"title"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	StartsAt   time.Time   `json:"starts_at"`
	EndsAt     time.Time   `json:"ends_at"`
	Active     bool        `json:"active"`
	Priority   int         `json:"priority"`
}

// DealView is a deal plus its derived state at read time.
type DealView struct {
	*models.Deal
	State models.DealState `json:"state"`
}

func (s *DealService) CreateDeal(ctx context.Context, storeID uuid.UUID, input DealInput) (*DealView, error) {
	if err := s.validateInput(ctx, storeID, input); err != nil {
		return nil, err
	}

	deal := &models.Deal{
		StoreID:    storeID,
		Title:      strings.TrimSpace(input.Title),
		ProductIDs: input.ProductIDs,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Active:     input.Active,
		Priority:   input.Priority,
	}
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, err
	}
	return s.viewOf(deal), nil
}

func (s *DealService) UpdateDeal(ctx context.Context, storeID, dealID uuid.UUID, input DealInput) (*DealView, error) {
	if err := s.validateInput(ctx, storeID, input); err != nil {
		return nil, err
	}

	deal := &models.Deal{
		ID:         dealID,
		StoreID:    storeID,
		Title:      strings.TrimSpace(input.Title),
		ProductIDs: input.ProductIDs,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Active:     input.Active,
		Priority:   input.Priority,
	}
	if err := s.deals.Update(ctx, deal); err != nil {
		return nil, err
	}

	updated, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(updated), nil
}

func (s *DealService) DeleteDeal(ctx context.Context, storeID, dealID uuid.UUID) error {
	return s.deals.Delete(ctx, storeID, dealID)
}

// ListForStore returns all of a store's deals with their current states,
// for the seller dashboard.
func (s *DealService) ListForStore(ctx context.Context, storeID uuid.UUID) ([]*DealView, error) {
	deals, err := s.deals.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	views := make([]*DealView, 0, len(deals))
	for _, deal := range deals {
		views = append(views, s.viewOf(deal))
	}
	return views, nil
}

// ListLive returns only the deals customers should see right now, in
// display order.
func (s *DealService) ListLive(ctx context.Context, storeID uuid.UUID) ([]*DealView, error) {
	deals, err := s.deals.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	live := deals[:0:0]
	for _, deal := range deals {
		if deal.IsLive(now) {
			live = append(live, deal)
		}
	}
	models.SortDeals(live)

	views := make([]*DealView, 0, len(live))
	for _, deal := range live {
		views = append(views, &DealView{Deal: deal, State: models.DealActive})
	}
	return views, nil
}

func (s *DealService) viewOf(deal *models.Deal) *DealView {
	return &DealView{Deal: deal, State: deal.State(s.now())}
}

func (s *DealService) validateInput(ctx context.Context, storeID uuid.UUID, input DealInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return Invalidf("deal title is required")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return Invalidf("deal start and end times are required")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return Invalidf("deal end time must be after its start time")
	}
	if len(input.ProductIDs) == 0 {
		return Invalidf("deal needs at least one product")
	}

	products, err := s.products.GetByIDs(ctx, input.ProductIDs)
	if err != nil {
		return err
	}
	for _, id := range input.ProductIDs {
		product, ok := products[id]
		if !ok || product.StoreID != storeID {
			return Invalidf("product %s does not belong to this store", id)
		}
	}
	return nil
}
