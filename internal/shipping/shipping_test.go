package shipping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCalculatorFee(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		subtotal float64
		state    string
		want     float64
	}{
		{
			name:     "flat fee below threshold",
			settings: Settings{FlatFee: 50, FreeShippingMin: 1000},
			subtotal: 500,
			want:     50,
		},
		{
			name:     "free shipping at threshold",
			settings: Settings{FlatFee: 50, FreeShippingMin: 1000},
			subtotal: 1000,
			want:     0,
		},
		{
			name:     "zero threshold never free",
			settings: Settings{FlatFee: 50},
			subtotal: 100000,
			want:     50,
		},
	}

	calc := NewCalculator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Fee(tt.settings, tt.subtotal, tt.state); got != tt.want {
				t.Errorf("Fee() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculatorFeeWithRateTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	contents := "rates:\n  Maharashtra: 40\n  kerala: 70\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write rates file: %v", err)
	}

	table, err := LoadRateTable(path)
	if err != nil {
		t.Fatalf("LoadRateTable: %v", err)
	}
	calc := NewCalculator(table)
	settings := Settings{FlatFee: 50, FreeShippingMin: 1000}

	if got := calc.Fee(settings, 500, "maharashtra"); got != 40 {
		t.Errorf("rate table override = %v, want 40", got)
	}
	if got := calc.Fee(settings, 500, "KERALA"); got != 70 {
		t.Errorf("case-insensitive lookup = %v, want 70", got)
	}
	if got := calc.Fee(settings, 500, "goa"); got != 50 {
		t.Errorf("fallback flat fee = %v, want 50", got)
	}
	if got := calc.Fee(settings, 1500, "kerala"); got != 0 {
		t.Errorf("free shipping wins over rate table = %v, want 0", got)
	}
}

func TestLoadRateTableRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("rates:\n  goa: -5\n"), 0o600); err != nil {
		t.Fatalf("write rates file: %v", err)
	}
	if _, err := LoadRateTable(path); err == nil {
		t.Fatalf("expected error for negative rate")
	}
}

func TestBuildTrackingURL(t *testing.T) {
	tests := []struct {
		name     string
		carrier  string
		number   string
		wantPart string
	}{
		{name: "delhivery", carrier: "Delhivery", number: "AWB123", wantPart: "delhivery.com"},
		{name: "blue dart spaced", carrier: "Blue Dart", number: "BD99", wantPart: "bluedart.com"},
		{name: "india post", carrier: "India Post", number: "IP55", wantPart: "indiapost.gov.in"},
		{name: "unknown carrier", carrier: "Local Courier", number: "X1", wantPart: ""},
		{name: "empty number", carrier: "Delhivery", number: "", wantPart: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTrackingURL(tt.carrier, tt.number)
			if tt.wantPart == "" {
				if got != "" {
					t.Errorf("BuildTrackingURL() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantPart) {
				t.Errorf("BuildTrackingURL() = %q, want containing %q", got, tt.wantPart)
			}
		})
	}
}
