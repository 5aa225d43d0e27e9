package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DealState is the derived display state of a deal. It is never stored;
// every read recomputes it from the clock so a deal flips between states
// without any write.
type DealState string

const (
	DealInactive  DealState = "inactive"
	DealScheduled DealState = "scheduled"
	DealActive    DealState = "active"
	DealExpired   DealState = "expired"
)

// Deal is a time-boxed promotional grouping of a store's products.
// EndsAt must be strictly after StartsAt; enforced at create/update.
type Deal struct {
	ID         uuid.UUID   `json:"id"`
	StoreID    uuid.UUID   `json:"store_id"`
	Title      string      `json:"title"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	StartsAt   time.Time   `json:"starts_at"`
	EndsAt     time.Time   `json:"ends_at"`
	Active     bool        `json:"active"`
	Priority   int         `json:"priority"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// State classifies the deal at the given instant. The four states are
// mutually exclusive and cover every valid (StartsAt < EndsAt) pair.
func (d *Deal) State(now time.Time) DealState {
	if d == nil || !d.Active {
		return DealInactive
	}
	if now.Before(d.StartsAt) {
		return DealScheduled
	}
	if now.After(d.EndsAt) {
		return DealExpired
	}
	return DealActive
}

// IsLive reports whether the deal should currently be shown to customers.
func (d *Deal) IsLive(now time.Time) bool {
	return d.State(now) == DealActive
}

// SortDeals orders deals for display: priority descending, earlier start
// first among equal priority.
func SortDeals(deals []*Deal) {
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].Priority != deals[j].Priority {
			return deals[i].Priority > deals[j].Priority
		}
		return deals[i].StartsAt.Before(deals[j].StartsAt)
	})
}
