package shipping

import "github.com/shopspring/decimal"

// Flat-rate shipping with free delivery above a subtotal threshold.
var (
	FlatFee       = decimal.NewFromInt(10)
	FreeThreshold = decimal.NewFromInt(100)
)

// Quote returns the shipping fee for the given merchandise subtotal. The
// threshold is strict: an order of exactly 100 still pays the flat fee.
func Quote(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeThreshold) {
		return decimal.Zero
	}
	return FlatFee
}
