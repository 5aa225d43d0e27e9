package checkout

// Package checkout computes the payable total for a cart, including wallet
// coin redemption. The arithmetic is pure: callers must re-quote whenever
// any input changes (cart, shipping fee, payment method, redemption
// request) instead of reusing a stale result.

import "math"

const (
	// CoinValue is the fixed conversion rate: rupees per wallet coin.
	CoinValue = 0.5
)

// Line is one cart entry to be priced.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Quote is the result of a checkout computation. TotalAfterWallet is what
// the customer pays; SafeRedeemCoins is what the wallet service should
// debit once the order is confirmed as placed.
type Quote struct {
	Subtotal           float64
	ShippingFee        float64
	Total              float64
	MaxRedeemableCoins int
	SafeRedeemCoins    int
	WalletDiscount     float64
	TotalAfterWallet   float64
}

// Compute prices the cart and clamps the requested coin redemption against
// both the wallet balance and the total-linked ceiling. It is total: every
// input combination produces a quote, never an error.
func Compute(lines []Line, shippingFee float64, walletBalanceCoins, requestedRedeemCoins int) Quote {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	total := subtotal + shippingFee

	maxRedeemable := min(walletBalanceCoins, int(math.Floor(total/CoinValue)))
	if maxRedeemable < 0 {
		maxRedeemable = 0
	}

	safeRedeem := min(requestedRedeemCoins, maxRedeemable)
	if safeRedeem < 0 {
		safeRedeem = 0
	}

	discount := Round2(float64(safeRedeem) * CoinValue)
	payable := Round2(total - discount)
	if payable < 0 {
		payable = 0
	}

	return Quote{
		Subtotal:           subtotal,
		ShippingFee:        shippingFee,
		Total:              total,
		MaxRedeemableCoins: maxRedeemable,
		SafeRedeemCoins:    safeRedeem,
		WalletDiscount:     discount,
		TotalAfterWallet:   payable,
	}
}

// CoinsToRupees converts a coin amount to its rupee value, rounded to
// paise.
func CoinsToRupees(coins int) float64 {
	return Round2(float64(coins) * CoinValue)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
