package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// GetOrCreate resolves the row for an authenticated identity, creating it
// on first access. The insert is guarded by the unique email constraint;
// a concurrent creator simply makes the insert a no-op and the following
// select picks up whichever row won.
func (s *UserStore) GetOrCreate(ctx context.Context, id uuid.UUID, email, name string, role models.UserRole, storeID uuid.UUID) (*models.User, error) {
	storeParam := pgtype.UUID{Bytes: storeID, Valid: storeID != uuid.Nil}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, store_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, id, email, name, string(role), storeParam)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return s.GetByEmail(ctx, email)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, name, role, store_id, created_at
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, name, role, store_id, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user      models.User
		role      string
		storeID   pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &storeID, &createdAt); err != nil {
		return nil, err
	}
	user.Role = models.UserRole(role)
	if storeID.Valid {
		user.StoreID = uuid.UUID(storeID.Bytes)
	}
	user.CreatedAt = createdAt.Time
	return &user, nil
}
