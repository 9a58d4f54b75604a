package checkout

import "github.com/maplecart/storefront-api/internal/payment"

// Draft tracks a checkout form in progress together with its current
// field errors. Editing a field clears only that field's error right
// away; every other error stays until the next full Validate. Errors
// therefore never outlive an edit of the offending field.
type Draft struct {
	Form   Form
	Errors map[string]string
}

// SetField updates a single form field by its error-map key and clears
// any error recorded for it. Unknown keys are ignored.
func (d *Draft) SetField(name, value string) {
	switch name {
	case FieldFirstName:
		d.Form.Address.FirstName = value
	case FieldLastName:
		d.Form.Address.LastName = value
	case FieldEmail:
		d.Form.Address.Email = value
	case FieldPhone:
		d.Form.Address.Phone = value
	case FieldAddressLine:
		d.Form.Address.AddressLine = value
	case FieldCity:
		d.Form.Address.City = value
	case FieldRegion:
		d.Form.Address.Region = value
	case FieldPostalCode:
		d.Form.Address.PostalCode = value
	case FieldCardNumber:
		d.card().Number = value
	case FieldExpiryDate:
		d.card().Expiry = value
	case FieldCVV:
		d.card().CVV = value
	default:
		return
	}
	delete(d.Errors, name)
}

// SetMethod switches the payment variant. Card data is kept so flipping
// back to card restores what the customer typed.
func (d *Draft) SetMethod(m payment.Method) {
	d.Form.Payment.Method = m
}

// Validate re-runs the full rule set, replacing the error map, and
// reports whether the draft may be submitted.
func (d *Draft) Validate(cv *Validator) bool {
	d.Errors = cv.Validate(d.Form)
	return len(d.Errors) == 0
}

func (d *Draft) card() *payment.Card {
	if d.Form.Payment.Card == nil {
		d.Form.Payment.Card = &payment.Card{}
	}
	return d.Form.Payment.Card
}
