package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/models"
)

// ErrReturnConflict means an approve/reject hit a request that is no longer
// in requested status.
var ErrReturnConflict = errors.New("return request is not in requested status")

type ReturnStore struct {
	pool *pgxpool.Pool
}

func NewReturnStore(pool *pgxpool.Pool) *ReturnStore {
	return &ReturnStore{pool: pool}
}

// Create appends a new request in requested status. The delivered-order
// guard lives in the service layer, which loads the order first.
func (s *ReturnStore) Create(ctx context.Context, request *models.ReturnRequest) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO return_requests (order_id, item_index, type, reason, description, image_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'requested')
		RETURNING id, requested_at
	`, request.OrderID, request.ItemIndex, string(request.Type), request.Reason,
		request.Description, request.ImageURLs)

	var requestedAt pgtype.Timestamptz
	if err := row.Scan(&request.ID, &requestedAt); err != nil {
		return err
	}
	request.Status = models.ReturnRequested
	request.RequestedAt = requestedAt.Time
	return nil
}

func (s *ReturnStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_id, item_index, type, reason, description, image_urls,
		       status, rejection_reason, requested_at, approved_at, rejected_at
		FROM return_requests WHERE id = $1
	`, id)
	request, err := scanReturnRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return request, err
}

// ListByOrder returns an order's requests oldest first, so a request's
// position in the slice is its stable index within the order.
func (s *ReturnStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ReturnRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, item_index, type, reason, description, image_urls,
		       status, rejection_reason, requested_at, approved_at, rejected_at
		FROM return_requests WHERE order_id = $1 ORDER BY requested_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReturnRequests(rows)
}

func (s *ReturnStore) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.ReturnRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.order_id, r.item_index, r.type, r.reason, r.description,
		       r.image_urls, r.status, r.rejection_reason, r.requested_at,
		       r.approved_at, r.rejected_at
		FROM return_requests r
		JOIN orders o ON o.id = r.order_id
		WHERE o.store_id = $1
		ORDER BY r.requested_at DESC
		LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReturnRequests(rows)
}

// Approve moves a request from requested to approved. The status predicate
// makes the transition atomic: a request already decided is left untouched
// and ErrReturnConflict is returned.
func (s *ReturnStore) Approve(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE return_requests SET status = 'approved', approved_at = NOW()
		WHERE id = $1 AND status = 'requested'
	`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrReturnConflict
	}
	return nil
}

// Reject moves a request from requested to rejected, recording the reason.
func (s *ReturnStore) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	if reason == "" {
		return fmt.Errorf("rejection reason is required")
	}
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE return_requests SET status = 'rejected', rejection_reason = $2, rejected_at = NOW()
		WHERE id = $1 AND status = 'requested'
	`, id, reason)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrReturnConflict
	}
	return nil
}

func collectReturnRequests(rows pgx.Rows) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	for rows.Next() {
		request, err := scanReturnRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

func scanReturnRequest(row rowScanner) (*models.ReturnRequest, error) {
	var (
		request         models.ReturnRequest
		requestType     string
		status          string
		rejectionReason pgtype.Text
		requestedAt     pgtype.Timestamptz
		approvedAt      pgtype.Timestamptz
		rejectedAt      pgtype.Timestamptz
	)
	if err := row.Scan(&request.ID, &request.OrderID, &request.ItemIndex, &requestType,
		&request.Reason, &request.Description, &request.ImageURLs, &status,
		&rejectionReason, &requestedAt, &approvedAt, &rejectedAt); err != nil {
		return nil, err
	}
	request.Type = models.ReturnType(requestType)
	request.Status = models.ReturnStatus(status)
	if rejectionReason.Valid {
		request.RejectionReason = rejectionReason.String
	}
	request.RequestedAt = requestedAt.Time
	if approvedAt.Valid {
		request.ApprovedAt = approvedAt.Time
	}
	if rejectedAt.Valid {
		request.RejectedAt = rejectedAt.Time
	}
	return &request, nil
}
