package models

import (
	"time"

	"github.com/google/uuid"
)

type ReturnType string

const (
	ReturnTypeReturn      ReturnType = "return"
	ReturnTypeReplacement ReturnType = "replacement"
)

type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	// ReturnCompleted is modeled for forward compatibility; nothing
	// transitions into it yet.
	ReturnCompleted ReturnStatus = "completed"
)

// ReturnRequest is a customer's post-delivery ask to return or replace a
// single order item. It is created in requested status and moves to exactly
// one of approved or rejected, both terminal.
type ReturnRequest struct {
	ID              uuid.UUID    `json:"id"`
	OrderID         uuid.UUID    `json:"order_id"`
	ItemIndex       int          `json:"item_index"`
	Type            ReturnType   `json:"type"`
	Reason          string       `json:"reason"`
	Description     string       `json:"description,omitempty"`
	ImageURLs       []string     `json:"image_urls,omitempty"`
	Status          ReturnStatus `json:"status"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	RequestedAt     time.Time    `json:"requested_at"`
	ApprovedAt      time.Time    `json:"approved_at,omitempty"`
	RejectedAt      time.Time    `json:"rejected_at,omitempty"`
}
