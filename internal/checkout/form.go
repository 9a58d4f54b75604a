package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/maplecart/storefront-api/internal/order"
	"github.com/maplecart/storefront-api/internal/payment"
)

// Field keys used in validation error maps. They match the JSON names
// the storefront renders errors against.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldAddressLine = "addressLine"
	FieldCity        = "city"
	FieldRegion      = "region"
	FieldPostalCode  = "postalCode"
	FieldCardNumber  = "cardNumber"
	FieldExpiryDate  = "expiryDate"
	FieldCVV         = "cvv"
)

// Form is a checkout submission: contact/shipping address plus the
// selected payment variant.
type Form struct {
	Address order.Address
	Payment payment.Details
}

// formRecord flattens a Form for tag-driven validation. Card fields are
// populated only for the card method, so other methods never have their
// card inputs validated.
type formRecord struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,simple_email"`
	Phone       string `json:"phone" validate:"required,phone_digits"`
	AddressLine string `json:"addressLine" validate:"required"`
	City        string `json:"city" validate:"required"`
	Region      string `json:"region" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required"`
	Method      string `json:"method"`
	CardNumber  string `json:"cardNumber" validate:"required_if=Method card,omitempty,card_number"`
	ExpiryDate  string `json:"expiryDate" validate:"required_if=Method card,omitempty,card_expiry"`
	CVV         string `json:"cvv" validate:"required_if=Method card,omitempty,card_cvv"`
}

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
	cardPattern   = regexp.MustCompile(`^\d{16}$`)
	nonDigit      = regexp.MustCompile(`\D`)
	whitespace    = regexp.MustCompile(`\s`)
)

// Validator checks checkout forms field by field. The zero value is not
// usable; construct with NewValidator.
type Validator struct {
	v *validator.Validate
}

// NewValidator wires the rule set into a go-playground validator
// instance with the storefront's custom formats registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone_digits", func(fl validator.FieldLevel) bool {
		digits := nonDigit.ReplaceAllString(fl.Field().String(), "")
		return len(digits) >= 10
	})
	mustRegister(v, "card_number", func(fl validator.FieldLevel) bool {
		return cardPattern.MatchString(whitespace.ReplaceAllString(fl.Field().String(), ""))
	})
	mustRegister(v, "card_expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "card_cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate runs the full rule set and returns a field-to-message map.
// An empty map means the form may be submitted. The whole set is
// re-evaluated on every call; nothing is cached between attempts.
func (cv *Validator) Validate(f Form) map[string]string {
	errs := map[string]string{}
	err := cv.v.Struct(buildRecord(f))
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = "invalid submission"
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = messageFor(field, fe.Tag())
	}
	return errs
}

func buildRecord(f Form) formRecord {
	rec := formRecord{
		FirstName:   strings.TrimSpace(f.Address.FirstName),
		LastName:    strings.TrimSpace(f.Address.LastName),
		Email:       strings.TrimSpace(f.Address.Email),
		Phone:       strings.TrimSpace(f.Address.Phone),
		AddressLine: strings.TrimSpace(f.Address.AddressLine),
		City:        strings.TrimSpace(f.Address.City),
		Region:      strings.TrimSpace(f.Address.Region),
		PostalCode:  strings.TrimSpace(f.Address.PostalCode),
		Method:      string(f.Payment.Method),
	}
	if f.Payment.Method == payment.MethodCard && f.Payment.Card != nil {
		rec.CardNumber = strings.TrimSpace(f.Payment.Card.Number)
		rec.ExpiryDate = strings.TrimSpace(f.Payment.Card.Expiry)
		rec.CVV = strings.TrimSpace(f.Payment.Card.CVV)
	}
	return rec
}

var requiredMessages = map[string]string{
	FieldFirstName:   "First name is required",
	FieldLastName:    "Last name is required",
	FieldEmail:       "Email is required",
	FieldPhone:       "Phone is required",
	FieldAddressLine: "Address is required",
	FieldCity:        "City is required",
	FieldRegion:      "Region is required",
	FieldPostalCode:  "Postal code is required",
	FieldCardNumber:  "Card number is required",
	FieldExpiryDate:  "Expiry date is required",
	FieldCVV:         "CVV is required",
}

var formatMessages = map[string]string{
	FieldEmail:      "Invalid email format",
	FieldPhone:      "Invalid phone number",
	FieldCardNumber: "Invalid card number (16 digits required)",
	FieldExpiryDate: "Invalid format (MM/YY)",
	FieldCVV:        "Invalid CVV (3-4 digits)",
}

func messageFor(field, tag string) string {
	switch tag {
	case "required", "required_if":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return "Required"
	default:
		if msg, ok := formatMessages[field]; ok {
			return msg
		}
		return "Invalid value"
	}
}
