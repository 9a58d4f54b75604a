package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplecart/storefront-api/internal/cart"
	"github.com/maplecart/storefront-api/internal/payment"
)

// Address is the contact and shipping information captured at checkout.
type Address struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Region      string `json:"region"`
	PostalCode  string `json:"postalCode"`
}

// Order is the immutable record produced by a successful checkout
// submission. Items are a value snapshot of the cart at assembly time;
// later cart mutations cannot alter it. Amounts are rounded to two
// fraction digits and satisfy Total == Round2(Subtotal+Tax+Shipping).
type Order struct {
	OrderID       string          `json:"orderId"`
	CreatedAt     time.Time       `json:"createdAt"`
	Customer      Address         `json:"customer"`
	Items         []cart.Line     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod payment.Method  `json:"paymentMethod"`
}
