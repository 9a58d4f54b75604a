package common

import "errors"

// AppError carries a storefront error code (NOT_FOUND, EMPTY_CART,
// PAYMENT_FAILED, ...) together with the HTTP status and optional
// field details it should render with. It wraps the underlying cause
// so errors.Is/As still see domain sentinels like order.ErrNotFound.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error surfaces the cause when one is attached, otherwise the
// client-facing message.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError wraps err with the code, message, and status a handler
// wants it rendered as.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError reports whether err carries AppError rendering metadata
// anywhere in its chain.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
