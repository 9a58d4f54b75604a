package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplecart/storefront-api/internal/cart"
	"github.com/maplecart/storefront-api/internal/order"
	"github.com/maplecart/storefront-api/internal/payment"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quebecAddress() order.Address {
	return order.Address{
		FirstName:   "Marie",
		LastName:    "Tremblay",
		Email:       "marie@example.com",
		Phone:       "514-555-0100",
		AddressLine: "100 Rue Principale",
		City:        "Montreal",
		Region:      "QC",
		PostalCode:  "H2X 1Y4",
	}
}

func TestQuoteQuebec(t *testing.T) {
	svc := &Service{}
	lines := []cart.Line{{
		ProductID: "1",
		Title:     "Widget",
		UnitPrice: dec("50"),
		Qty:       2,
	}}

	totals, err := svc.Quote(lines, "QC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Subtotal.Equal(dec("100")) {
		t.Fatalf("subtotal: expected 100, got %s", totals.Subtotal)
	}
	// 100 * (0.05 + 0.09975) = 14.975, rounded half away from zero.
	if !totals.Tax.Equal(dec("14.98")) {
		t.Fatalf("tax: expected 14.98, got %s", totals.Tax)
	}
	if !totals.Shipping.Equal(dec("10")) {
		t.Fatalf("shipping: expected 10 at exactly the threshold, got %s", totals.Shipping)
	}
	if !totals.Total.Equal(dec("124.98")) {
		t.Fatalf("total: expected 124.98, got %s", totals.Total)
	}
}

func TestQuoteFreeShippingAboveThreshold(t *testing.T) {
	svc := &Service{}
	lines := []cart.Line{{ProductID: "1", UnitPrice: dec("100.01"), Qty: 1}}
	totals, err := svc.Quote(lines, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Shipping.IsZero() {
		t.Fatalf("expected free shipping, got %s", totals.Shipping)
	}
	if !totals.Tax.IsZero() {
		t.Fatalf("expected zero tax without a region, got %s", totals.Tax)
	}
	if !totals.Total.Equal(dec("100.01")) {
		t.Fatalf("total: expected 100.01, got %s", totals.Total)
	}
}

func TestQuoteSavings(t *testing.T) {
	svc := &Service{}
	lines := []cart.Line{
		{ProductID: "1", UnitPrice: dec("100"), DiscountPercent: dec("10"), Qty: 1},
		{ProductID: "2", UnitPrice: dec("100"), DiscountPercent: dec("0.5"), Qty: 1},
	}
	totals, err := svc.Quote(lines, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Savings.Equal(dec("10")) {
		t.Fatalf("savings: expected 10 (sub-floor discount excluded), got %s", totals.Savings)
	}
	if !totals.Subtotal.Equal(dec("189.5")) {
		t.Fatalf("subtotal: expected 189.5, got %s", totals.Subtotal)
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Quote(nil, "QC"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestAssembleDeterministicExceptOrderID(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seq := 0
	svc := &Service{
		Now:  func() time.Time { return fixed },
		Rand: func(n int) int { seq++; return seq % n },
	}
	lines := []cart.Line{{ProductID: "1", UnitPrice: dec("50"), Qty: 2}}
	pay := payment.Details{Method: payment.MethodBankTransfer}

	first, err := svc.Assemble(lines, quebecAddress(), pay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Assemble(lines, quebecAddress(), pay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.OrderID == second.OrderID {
		t.Fatalf("order ids should differ, both %s", first.OrderID)
	}
	if !first.Subtotal.Equal(second.Subtotal) || !first.Tax.Equal(second.Tax) ||
		!first.Shipping.Equal(second.Shipping) || !first.Total.Equal(second.Total) {
		t.Fatalf("amounts should be identical across assemblies: %+v vs %+v", first, second)
	}
	if !first.Total.Equal(dec("124.98")) {
		t.Fatalf("total: expected 124.98, got %s", first.Total)
	}
	if first.PaymentMethod != payment.MethodBankTransfer {
		t.Fatalf("expected payment method to carry through, got %s", first.PaymentMethod)
	}
}

func TestAssembleSnapshotsItems(t *testing.T) {
	svc := &Service{}
	lines := []cart.Line{{ProductID: "1", Title: "Widget", UnitPrice: dec("120"), Qty: 1}}
	ord, err := svc.Assemble(lines, quebecAddress(), payment.Details{Method: payment.MethodCard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines[0].Qty = 99
	lines[0].Title = "Mutated"
	if ord.Items[0].Qty != 1 || ord.Items[0].Title != "Widget" {
		t.Fatalf("order items must be a snapshot, got %+v", ord.Items[0])
	}
}

func TestAssembleEmptyCart(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Assemble(nil, quebecAddress(), payment.Details{Method: payment.MethodCard}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}
