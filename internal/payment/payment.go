package payment

import (
	"fmt"
	"strings"
)

// Method identifies how the customer pays.
type Method string

const (
	MethodCard             Method = "card"
	MethodExternalRedirect Method = "external-redirect"
	MethodBankTransfer     Method = "bank-transfer"
)

// Card carries the fields required only when paying by card.
type Card struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"expiryDate"`
	CVV    string `json:"cvv"`
}

// Details is a tagged payment variant: Card is populated only when
// Method is MethodCard. The redirect and bank-transfer variants carry
// no extra data.
type Details struct {
	Method Method `json:"method"`
	Card   *Card  `json:"card,omitempty"`
}

// ParseMethod normalises and validates a payment method string.
func ParseMethod(value string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(value))) {
	case MethodCard:
		return MethodCard, nil
	case MethodExternalRedirect:
		return MethodExternalRedirect, nil
	case MethodBankTransfer:
		return MethodBankTransfer, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", value)
	}
}
