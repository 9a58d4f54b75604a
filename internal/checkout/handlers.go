package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/maplecart/storefront-api/internal/cart"
	"github.com/maplecart/storefront-api/internal/common"
	"github.com/maplecart/storefront-api/internal/lock"
	"github.com/maplecart/storefront-api/internal/obs"
	"github.com/maplecart/storefront-api/internal/order"
	"github.com/maplecart/storefront-api/internal/payment"
)

// Handler wires the checkout flow to HTTP. On a successful submission
// it performs the caller-side obligations of the order handoff
// contract: persist the order, then clear the cart.
type Handler struct {
	Carts     *cart.Service
	CartStore *cart.Store
	Orders    *order.Store
	Svc       *Service
	Validator *Validator
	Payments  payment.Provider
	Locks     lock.TryLocker
	Log       zerolog.Logger
}

type submitRequest struct {
	Address order.Address `json:"address"`
	Payment struct {
		Method     string `json:"method"`
		CardNumber string `json:"cardNumber"`
		ExpiryDate string `json:"expiryDate"`
		CVV        string `json:"cvv"`
	} `json:"payment"`
}

type quoteRequest struct {
	Region string `json:"region"`
}

// Quote returns the order summary for the cart and a candidate region,
// mirroring the live totals shown beside the checkout form.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	var payload quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	c, err := h.Carts.Get(r.Context(), cartID)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	totals, err := h.Svc.Quote(c.Lines(), payload.Region)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			common.JSONError(w, http.StatusConflict, "EMPTY_CART", "cart is empty", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute totals", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": totals})
}

// Submit validates the form, runs the simulated payment, assembles the
// order, persists it, and clears the cart. While a submission is in
// flight any concurrent attempt for the same cart is rejected.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	method, err := payment.ParseMethod(payload.Payment.Method)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	details := payment.Details{Method: method}
	if method == payment.MethodCard {
		details.Card = &payment.Card{
			Number: payload.Payment.CardNumber,
			Expiry: payload.Payment.ExpiryDate,
			CVV:    payload.Payment.CVV,
		}
	}

	if fieldErrs := h.Validator.Validate(Form{Address: payload.Address, Payment: details}); len(fieldErrs) > 0 {
		h.countFailure("validation")
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "checkout form is invalid", fieldErrs)
		return
	}

	release, err := h.Locks.Acquire(r.Context(), "checkout:"+cartID)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			h.countFailure("in_flight")
			common.JSONError(w, http.StatusConflict, "CHECKOUT_IN_FLIGHT", "a submission is already being processed", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to start checkout", nil)
		return
	}
	defer release()

	// The cart is snapshotted under the lock: a competing submission
	// that already emptied it cannot hand us a stale non-empty view.
	c, err := h.Carts.Get(r.Context(), cartID)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	lines := c.Lines()
	if len(lines) == 0 {
		h.countFailure("empty_cart")
		common.JSONError(w, http.StatusConflict, "EMPTY_CART", "cart is empty", nil)
		return
	}

	ord, err := h.Svc.Assemble(lines, payload.Address, details)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to assemble order", nil)
		return
	}

	start := time.Now()
	_, err = h.Payments.Charge(r.Context(), payment.ChargeRequest{
		Reference: ord.OrderID,
		Amount:    ord.Total,
		Method:    method,
	})
	if obs.PaymentSimLatency != nil {
		obs.PaymentSimLatency.Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		h.countFailure("payment")
		h.Log.Warn().Err(err).Str("order_id", ord.OrderID).Msg("payment simulation failed")
		common.JSONError(w, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment processing failed. Please try again.", nil)
		return
	}

	if err := h.Orders.Save(r.Context(), cartID, ord); err != nil {
		h.Log.Error().Err(err).Str("order_id", ord.OrderID).Msg("persist order")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist order", nil)
		return
	}

	// Order handoff: the checkout caller owns clearing the cart.
	h.Carts.Clear(cartID)
	if err := h.CartStore.Delete(r.Context(), cartID); err != nil {
		h.Log.Error().Err(err).Str("cart_id", cartID).Msg("clear cart mirror")
	}

	if obs.OrdersTotal != nil {
		obs.OrdersTotal.Inc()
	}
	h.Log.Info().Str("order_id", ord.OrderID).Str("cart_id", cartID).Msg("order created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": ord})
}

func (h *Handler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart", nil)
	}
}

func (h *Handler) countFailure(reason string) {
	if obs.CheckoutFailuresTotal != nil {
		obs.CheckoutFailuresTotal.WithLabelValues(reason).Inc()
	}
}
