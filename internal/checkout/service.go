package checkout

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplecart/storefront-api/internal/cart"
	"github.com/maplecart/storefront-api/internal/order"
	"github.com/maplecart/storefront-api/internal/payment"
	"github.com/maplecart/storefront-api/internal/pricing"
	"github.com/maplecart/storefront-api/internal/shipping"
	"github.com/maplecart/storefront-api/internal/tax"
)

// ErrEmptyCart is returned when assembly is attempted with no items.
var ErrEmptyCart = errors.New("cart is empty")

// Service assembles immutable orders from validated checkout input. It
// is pure apart from the injectable clock and random source; it never
// clears the cart, persists, or navigates - those stay with the caller.
type Service struct {
	Now  func() time.Time
	Rand func(n int) int
}

// Totals is the order summary for a set of lines and a region, rounded
// for display. Accumulation happens at full precision; each component
// is rounded independently and Total is the rounded sum of the rounded
// components.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	Savings  decimal.Decimal `json:"savings"`
}

// Quote computes the rounded totals without producing an order.
func (s *Service) Quote(lines []cart.Line, region string) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyCart
	}
	plines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		plines = append(plines, l.PricingLine())
	}
	subtotal, err := pricing.Subtotal(plines)
	if err != nil {
		return Totals{}, err
	}
	savings, err := pricing.TotalSavings(plines)
	if err != nil {
		return Totals{}, err
	}
	taxAmount := tax.Compute(subtotal, region)
	shippingFee := shipping.Quote(subtotal)

	t := Totals{
		Subtotal: pricing.Round2(subtotal),
		Tax:      pricing.Round2(taxAmount),
		Shipping: pricing.Round2(shippingFee),
		Savings:  pricing.Round2(savings),
	}
	t.Total = pricing.Round2(t.Subtotal.Add(t.Tax).Add(t.Shipping))
	return t, nil
}

// Assemble produces the order record for a non-empty cart and a form
// that already passed validation. Items are snapshotted by value, so
// later cart mutation cannot alter the order.
func (s *Service) Assemble(lines []cart.Line, addr order.Address, pay payment.Details) (order.Order, error) {
	totals, err := s.Quote(lines, addr.Region)
	if err != nil {
		return order.Order{}, err
	}
	items := make([]cart.Line, len(lines))
	copy(items, lines)
	now := s.now()
	return order.Order{
		OrderID:       fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), s.rand(10000)),
		CreatedAt:     now,
		Customer:      addr,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Shipping:      totals.Shipping,
		Total:         totals.Total,
		PaymentMethod: pay.Method,
	}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) rand(n int) int {
	if s != nil && s.Rand != nil {
		return s.Rand(n)
	}
	return rand.IntN(n)
}
