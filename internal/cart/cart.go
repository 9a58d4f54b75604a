package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/maplecart/storefront-api/internal/pricing"
)

// ErrNotFound indicates the requested cart or line could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Line is one product entry in a cart, snapshotted from the catalog at
// add time. Price fields are trusted as already validated upstream.
type Line struct {
	ProductID       string          `json:"productId"`
	Title           string          `json:"title"`
	Brand           string          `json:"brand"`
	Thumbnail       string          `json:"thumbnail"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Qty             int             `json:"qty"`
}

// PricingLine converts the cart line into its pricing view.
func (l Line) PricingLine() pricing.Line {
	return pricing.Line{UnitPrice: l.UnitPrice, DiscountPercent: l.DiscountPercent, Qty: l.Qty}
}

// Cart holds an ordered sequence of lines, at most one per product.
// A cart is shared between concurrent requests for the same session,
// so every mutation and read holds the cart's own mutex.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// NewCart builds a cart from previously persisted lines.
func NewCart(lines []Line) *Cart {
	c := &Cart{}
	if len(lines) > 0 {
		c.lines = append(c.lines, lines...)
	}
	return c
}

// Add merges the line into the cart: an existing entry for the same
// product has its quantity incremented, otherwise the line is appended
// preserving insertion order.
func (c *Cart) Add(line Line) error {
	if strings.TrimSpace(line.ProductID) == "" {
		return fmt.Errorf("product id required: %w", ErrInvalidInput)
	}
	if line.Qty < 1 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == line.ProductID {
			c.lines[i].Qty += line.Qty
			return nil
		}
	}
	c.lines = append(c.lines, line)
	return nil
}

// UpdateQty sets the quantity for a product. A quantity of zero or
// below removes the line.
func (c *Cart) UpdateQty(productID string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			if qty < 1 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return nil
			}
			c.lines[i].Qty = qty
			return nil
		}
	}
	return ErrNotFound
}

// Remove deletes the line for a product.
func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// ItemCount sums the quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, l := range c.lines {
		total += l.Qty
	}
	return total
}
