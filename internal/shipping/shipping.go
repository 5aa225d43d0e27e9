// Package shipping computes order shipping fees from store settings and an
// optional destination rate table.
package shipping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings are a store's shipping configuration. A zero FreeShippingMin
// disables the free-shipping threshold.
type Settings struct {
	FlatFee         float64
	FreeShippingMin float64
}

// RateTable maps normalized destination states to a fee override. Stores
// without an entry fall back to their flat fee.
type RateTable struct {
	rates map[string]float64
}

type rateFile struct {
	Rates map[string]float64 `yaml:"rates"`
}

// LoadRateTable reads a YAML rate file:
//
//	rates:
//	  maharashtra: 40
//	  kerala: 70
func LoadRateTable(path string) (*RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shipping rates: %w", err)
	}

	var parsed rateFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse shipping rates: %w", err)
	}

	rates := make(map[string]float64, len(parsed.Rates))
	for state, fee := range parsed.Rates {
		if fee < 0 {
			return nil, fmt.Errorf("shipping rate for %q must not be negative", state)
		}
		rates[normalizeState(state)] = fee
	}

	return &RateTable{rates: rates}, nil
}

// Calculator resolves the shipping fee for a cart. It is safe for
// concurrent use; the rate table is read-only after load.
type Calculator struct {
	rateTable *RateTable
}

func NewCalculator(rateTable *RateTable) *Calculator {
	return &Calculator{rateTable: rateTable}
}

// Fee returns the shipping charge for an order subtotal shipped to the
// given state. Free shipping applies once the subtotal reaches the store's
// threshold; otherwise a destination rate overrides the store flat fee.
func (c *Calculator) Fee(settings Settings, subtotal float64, destinationState string) float64 {
	if settings.FreeShippingMin > 0 && subtotal >= settings.FreeShippingMin {
		return 0
	}

	if c != nil && c.rateTable != nil {
		if fee, ok := c.rateTable.rates[normalizeState(destinationState)]; ok {
			return fee
		}
	}

	return settings.FlatFee
}

func normalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}
