package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for malformed pricing inputs.
var ErrInvalidInput = errors.New("invalid pricing input")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// savingsFloor is the minimum discount percent counted towards the
	// savings figure. Discounts below 1% still lower the effective price
	// but are excluded from the displayed savings total.
	savingsFloor = decimal.NewFromInt(1)
)

// Line is the pricing view of a single cart entry.
type Line struct {
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Qty             int
}

// EffectivePrice returns the unit price after applying the discount
// percentage. The computation is deterministic: identical inputs yield
// identical decimals at every call site.
func EffectivePrice(unitPrice, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if unitPrice.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("unit price must not be negative: %w", ErrInvalidInput)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return decimal.Decimal{}, fmt.Errorf("discount percent outside [0,100]: %w", ErrInvalidInput)
	}
	return unitPrice.Mul(one.Sub(discountPercent.Div(hundred))), nil
}

// LineTotal returns the discounted price of a line multiplied by its quantity.
func LineTotal(line Line) (decimal.Decimal, error) {
	effective, err := EffectivePrice(line.UnitPrice, line.DiscountPercent)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return effective.Mul(decimal.NewFromInt(int64(line.Qty))), nil
}

// Subtotal sums the line totals of all provided lines. An empty input
// yields zero.
func Subtotal(lines []Line) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		total, err := LineTotal(line)
		if err != nil {
			return decimal.Decimal{}, err
		}
		subtotal = subtotal.Add(total)
	}
	return subtotal, nil
}

// OriginalTotal sums unit price times quantity, ignoring discounts.
func OriginalTotal(lines []Line) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		if line.UnitPrice.IsNegative() {
			return decimal.Decimal{}, fmt.Errorf("unit price must not be negative: %w", ErrInvalidInput)
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return total, nil
}

// TotalSavings sums (unit price - effective price) x quantity over lines
// whose discount is at least 1%. Lines below the floor contribute nothing
// even though their effective price differs fractionally.
func TotalSavings(lines []Line) (decimal.Decimal, error) {
	savings := decimal.Zero
	for _, line := range lines {
		if line.DiscountPercent.LessThan(savingsFloor) {
			continue
		}
		effective, err := EffectivePrice(line.UnitPrice, line.DiscountPercent)
		if err != nil {
			return decimal.Decimal{}, err
		}
		saved := line.UnitPrice.Sub(effective).Mul(decimal.NewFromInt(int64(line.Qty)))
		savings = savings.Add(saved)
	}
	return savings, nil
}

// Round2 rounds half away from zero to two fraction digits. It belongs at
// the presentation and persistence boundary only; intermediate sums stay
// at full precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
