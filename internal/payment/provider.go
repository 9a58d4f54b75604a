package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the charge attempt is rejected. The
// failure is recoverable: the caller keeps the submitted form intact
// and may retry.
var ErrDeclined = errors.New("payment declined")

// ChargeRequest captures the information needed to charge a customer.
type ChargeRequest struct {
	Reference string
	Amount    decimal.Decimal
	Method    Method
}

// Receipt acknowledges a successful charge.
type Receipt struct {
	Reference string
	ChargedAt time.Time
}

// Provider abstracts the charge step of checkout.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
}

// Simulator stands in for a real payment provider. It waits a fixed
// artificial delay, then succeeds or declines according to FailRate.
// No gateway is contacted.
type Simulator struct {
	Delay    time.Duration
	FailRate float64
	Now      func() time.Time
	Rand     func() float64
}

// Charge waits the configured delay, honouring context cancellation,
// and returns a receipt or ErrDeclined.
func (s Simulator) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}
	if s.FailRate > 0 && s.rand() < s.FailRate {
		return Receipt{}, ErrDeclined
	}
	return Receipt{Reference: req.Reference, ChargedAt: s.now()}, nil
}

func (s Simulator) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Simulator) rand() float64 {
	if s.Rand != nil {
		return s.Rand()
	}
	return rand.Float64()
}
