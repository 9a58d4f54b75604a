package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		name     string
		subtotal string
		want     string
	}{
		{"below threshold", "50", "10"},
		{"exactly at threshold still pays", "100", "10"},
		{"just above threshold ships free", "100.01", "0"},
		{"far above threshold", "500", "0"},
		{"empty cart", "0", "10"},
	}
	for _, tc := range cases {
		got := Quote(decimal.RequireFromString(tc.subtotal))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s: Quote(%s) = %s, expected %s", tc.name, tc.subtotal, got, tc.want)
		}
	}
}
