package models

import (
	"testing"
	"time"
)

func TestDealState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		active bool
		starts time.Time
		ends   time.Time
		want   DealState
	}{
		{
			name:   "inactive wins regardless of window",
			active: false,
			starts: now.Add(-time.Hour),
			ends:   now.Add(time.Hour),
			want:   DealInactive,
		},
		{
			name:   "scheduled before start",
			active: true,
			starts: now.Add(time.Hour),
			ends:   now.Add(2 * time.Hour),
			want:   DealScheduled,
		},
		{
			name:   "expired after end",
			active: true,
			starts: now.Add(-2 * time.Hour),
			ends:   now.Add(-time.Hour),
			want:   DealExpired,
		},
		{
			name:   "active inside window",
			active: true,
			starts: now.Add(-time.Hour),
			ends:   now.Add(time.Hour),
			want:   DealActive,
		},
		{
			name:   "active exactly at start",
			active: true,
			starts: now,
			ends:   now.Add(time.Hour),
			want:   DealActive,
		},
		{
			name:   "active exactly at end",
			active: true,
			starts: now.Add(-time.Hour),
			ends:   now,
			want:   DealActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Deal{Active: tt.active, StartsAt: tt.starts, EndsAt: tt.ends}
			if got := d.State(now); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDealStateExhaustive(t *testing.T) {
	// Every (active, offset) combination must land in exactly one state.
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	starts := base.Add(time.Hour)
	ends := base.Add(3 * time.Hour)

	for _, active := range []bool{true, false} {
		for offset := time.Duration(0); offset <= 4*time.Hour; offset += 10 * time.Minute {
			d := &Deal{Active: active, StartsAt: starts, EndsAt: ends}
			state := d.State(base.Add(offset))
			switch state {
			case DealInactive, DealScheduled, DealActive, DealExpired:
			default:
				t.Fatalf("unexpected state %q at offset %s", state, offset)
			}
			if !active && state != DealInactive {
				t.Fatalf("inactive deal classified %q", state)
			}
		}
	}
}

func TestSortDeals(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	deals := []*Deal{
		{Title: "low priority", Priority: 1, StartsAt: early},
		{Title: "high late", Priority: 5, StartsAt: late},
		{Title: "high early", Priority: 5, StartsAt: early},
	}

	SortDeals(deals)

	got := []string{deals[0].Title, deals[1].Title, deals[2].Title}
	want := []string{"high early", "high late", "low priority"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}
