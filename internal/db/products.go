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

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (store_id, name, description, unit_price, stock, active, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, product.StoreID, product.Name, product.Description, product.UnitPrice,
		product.Stock, product.Active, product.ImageURLs)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&product.ID, &createdAt, &updatedAt); err != nil {
		return err
	}
	product.CreatedAt = createdAt.Time
	product.UpdatedAt = updatedAt.Time
	return nil
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, unit_price = $4, stock = $5,
		    active = $6, image_urls = $7, updated_at = NOW()
		WHERE id = $1 AND store_id = $8
	`, product.ID, product.Name, product.Description, product.UnitPrice,
		product.Stock, product.Active, product.ImageURLs, product.StoreID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, storeID, productID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		DELETE FROM products WHERE id = $1 AND store_id = $2
	`, productID, storeID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, store_id, name, description, unit_price, stock, active,
		       image_urls, created_at, updated_at
		FROM products WHERE id = $1
	`, productID)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return product, err
}

// GetByIDs loads products keyed by id. Missing ids are simply absent from
// the result; callers decide whether that is an error.
func (s *ProductStore) GetByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, store_id, name, description, unit_price, stock, active,
		       image_urls, created_at, updated_at
		FROM products WHERE id = ANY($1)
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*models.Product, len(productIDs))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	return products, rows.Err()
}

func (s *ProductStore) ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]*models.Product, error) {
	query := `
		SELECT id, store_id, name, description, unit_price, stock, active,
		       image_urls, created_at, updated_at
		FROM products WHERE store_id = $1
	`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product   models.Product
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&product.ID, &product.StoreID, &product.Name, &product.Description,
		&product.UnitPrice, &product.Stock, &product.Active, &product.ImageURLs,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	product.CreatedAt = createdAt.Time
	product.UpdatedAt = updatedAt.Time
	return &product, nil
}
