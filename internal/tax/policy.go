package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Flat rates applied per jurisdiction. GST covers every Canadian
// province and territory; QST stacks on top for Quebec. Extend the rule
// set by growing this table, not by branching elsewhere.
var (
	gstRate = decimal.RequireFromString("0.05")
	qstRate = decimal.RequireFromString("0.09975")
)

// provinces is the fixed set of two-letter Canadian province and
// territory codes that attract GST.
var provinces = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true,
	"NS": true, "NT": true, "NU": true, "ON": true, "PE": true,
	"QC": true, "SK": true, "YT": true,
}

// Compute returns the tax owed on subtotal for the given region code.
// Codes are trimmed and upper-cased, then matched on their first two
// characters against the province set, so "ONX" is taxed as Ontario.
// Empty, unrecognised, or non-Canadian codes yield zero tax.
func Compute(subtotal decimal.Decimal, region string) decimal.Decimal {
	code := strings.ToUpper(strings.TrimSpace(region))
	if code == "QC" || code == "QUEBEC" {
		return subtotal.Mul(gstRate).Add(subtotal.Mul(qstRate))
	}
	if len(code) >= 2 && provinces[code[:2]] {
		return subtotal.Mul(gstRate)
	}
	return decimal.Zero
}
