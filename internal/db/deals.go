package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/models"
)

type DealStore struct {
	pool *pgxpool.Pool
}

func NewDealStore(pool *pgxpool.Pool) *DealStore {
	return &DealStore{pool: pool}
}

func (s *DealStore) Create(ctx context.Context, deal *models.Deal) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO deals (store_id, title, product_ids, starts_at, ends_at, active, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, deal.StoreID, deal.Title, deal.ProductIDs, deal.StartsAt, deal.EndsAt,
		deal.Active, deal.Priority)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&deal.ID, &createdAt, &updatedAt); err != nil {
		return err
	}
	deal.CreatedAt = createdAt.Time
	deal.UpdatedAt = updatedAt.Time
	return nil
}

func (s *DealStore) Update(ctx context.Context, deal *models.Deal) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE deals
		SET title = $2, product_ids = $3, starts_at = $4, ends_at = $5,
		    active = $6, priority = $7, updated_at = NOW()
		WHERE id = $1 AND store_id = $8
	`, deal.ID, deal.Title, deal.ProductIDs, deal.StartsAt, deal.EndsAt,
		deal.Active, deal.Priority, deal.StoreID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DealStore) Delete(ctx context.Context, storeID, dealID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		DELETE FROM deals WHERE id = $1 AND store_id = $2
	`, dealID, storeID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DealStore) GetByID(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, store_id, title, product_ids, starts_at, ends_at, active,
		       priority, created_at, updated_at
		FROM deals WHERE id = $1
	`, dealID)
	deal, err := scanDeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return deal, err
}

// ListByStore returns all of a store's deals in display order: priority
// descending, then earlier start first.
func (s *DealStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.Deal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store_id, title, product_ids, starts_at, ends_at, active,
		       priority, created_at, updated_at
		FROM deals WHERE store_id = $1
		ORDER BY priority DESC, starts_at ASC
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		deal      models.Deal
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&deal.ID, &deal.StoreID, &deal.Title, &deal.ProductIDs,
		&deal.StartsAt, &deal.EndsAt, &deal.Active, &deal.Priority,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	deal.CreatedAt = createdAt.Time
	deal.UpdatedAt = updatedAt.Time
	return &deal, nil
}
