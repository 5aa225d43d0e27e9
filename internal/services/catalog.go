package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/models"
)

// CatalogService manages a store's products.
type CatalogService struct {
	products productStore
	logger   *slog.Logger
}

func NewCatalogService(products productStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UnitPrice   float64  `json:"unit_price"`
	Stock       int      `json:"stock"`
	Active      bool     `json:"active"`
	ImageURLs   []string `json:"image_urls"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Invalidf("product name is required")
	}
	if in.UnitPrice < 0 {
		return Invalidf("product price must not be negative")
	}
	if in.Stock < 0 {
		return Invalidf("product stock must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, storeID uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   input.UnitPrice,
		Stock:       input.Stock,
		Active:      input.Active,
		ImageURLs:   input.ImageURLs,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          productID,
		StoreID:     storeID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   input.UnitPrice,
		Stock:       input.Stock,
		Active:      input.Active,
		ImageURLs:   input.ImageURLs,
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, productID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	return s.products.Delete(ctx, storeID, productID)
}

// ListForStore returns every product of a store, including inactive ones.
func (s *CatalogService) ListForStore(ctx context.Context, storeID uuid.UUID) ([]*models.Product, error) {
	return s.products.ListByStore(ctx, storeID, false)
}

// ListPublic returns the active products customers can buy.
func (s *CatalogService) ListPublic(ctx context.Context, storeID uuid.UUID) ([]*models.Product, error) {
	return s.products.ListByStore(ctx, storeID, true)
}
