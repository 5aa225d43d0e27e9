package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Campaign is one promotional email batch queued by a seller.
type Campaign struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Subject   string    `json:"subject"`
	CreatedAt string    `json:"created_at"`
}

// CampaignSend records the outcome for a single recipient. Failures carry
// the error text; a failed send never aborts the rest of the batch.
type CampaignSend struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Recipient  string    `json:"recipient"`
	Sent       bool      `json:"sent"`
	Error      string    `json:"error,omitempty"`
}

type CampaignStore struct {
	pool *pgxpool.Pool
}

func NewCampaignStore(pool *pgxpool.Pool) *CampaignStore {
	return &CampaignStore{pool: pool}
}

func (s *CampaignStore) Create(ctx context.Context, storeID uuid.UUID, subject, body string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO campaigns (store_id, subject, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`, storeID, subject, body).Scan(&id)
	return id, err
}

func (s *CampaignStore) RecordSend(ctx context.Context, send CampaignSend) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO campaign_sends (campaign_id, recipient, sent, error)
		VALUES ($1, $2, $3, $4)
	`, send.CampaignID, send.Recipient, send.Sent, pgtype.Text{String: send.Error, Valid: send.Error != ""})
	return err
}

func (s *CampaignStore) ListSends(ctx context.Context, campaignID uuid.UUID) ([]CampaignSend, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT campaign_id, recipient, sent, error
		FROM campaign_sends WHERE campaign_id = $1 ORDER BY recipient
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sends []CampaignSend
	for rows.Next() {
		var (
			send    CampaignSend
			sendErr pgtype.Text
		)
		if err := rows.Scan(&send.CampaignID, &send.Recipient, &send.Sent, &sendErr); err != nil {
			return nil, err
		}
		if sendErr.Valid {
			send.Error = sendErr.String
		}
		sends = append(sends, send)
	}
	return sends, rows.Err()
}
