package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/maplecart/storefront-api/internal/cart"
	"github.com/maplecart/storefront-api/internal/checkout"
	"github.com/maplecart/storefront-api/internal/lock"
	"github.com/maplecart/storefront-api/internal/order"
	"github.com/maplecart/storefront-api/internal/payment"
)

type stubProvider struct {
	err     error
	charges int
}

func (s *stubProvider) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Receipt, error) {
	s.charges++
	if s.err != nil {
		return payment.Receipt{}, s.err
	}
	return payment.Receipt{Reference: req.Reference, ChargedAt: time.Now()}, nil
}

type fixture struct {
	router   *chi.Mux
	carts    *cart.Service
	store    *cart.Store
	orders   *order.Store
	provider *stubProvider
	redis    *redis.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &cart.Store{R: client, TTL: time.Hour}
	carts := cart.NewService(store)
	orders := &order.Store{R: client}
	provider := &stubProvider{}

	h := &checkout.Handler{
		Carts:     carts,
		CartStore: store,
		Orders:    orders,
		Svc:       &checkout.Service{},
		Validator: checkout.NewValidator(),
		Payments:  provider,
		Locks:     lock.TryLocker{R: client, TTL: time.Minute},
		Log:       zerolog.Nop(),
	}

	r := chi.NewRouter()
	r.Post("/carts/{cartId}/quote", h.Quote)
	r.Post("/carts/{cartId}/checkout", h.Submit)

	return &fixture{router: r, carts: carts, store: store, orders: orders, provider: provider, redis: client}
}

func (f *fixture) seedCart(t *testing.T) string {
	t.Helper()
	id := f.carts.Create()
	lines, err := f.carts.Add(context.Background(), id, cart.Line{
		ProductID: "1",
		Title:     "Widget",
		UnitPrice: decimal.NewFromInt(50),
		Qty:       2,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), id, lines))
	return id
}

func submitBody() map[string]any {
	return map[string]any{
		"address": map[string]any{
			"firstName":   "Marie",
			"lastName":    "Tremblay",
			"email":       "marie@example.com",
			"phone":       "514-555-0100",
			"addressLine": "100 Rue Principale",
			"city":        "Montreal",
			"region":      "QC",
			"postalCode":  "H2X 1Y4",
		},
		"payment": map[string]any{
			"method":     "card",
			"cardNumber": "4242424242424242",
			"expiryDate": "12/27",
			"cvv":        "123",
		},
	}
}

func (f *fixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitHappyPath(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	rec := f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.OrderID)
	require.True(t, resp.Data.Total.Equal(decimal.RequireFromString("124.98")), resp.Data.Total.String())
	require.Equal(t, payment.MethodCard, resp.Data.PaymentMethod)
	require.Equal(t, 1, f.provider.charges)

	stored, err := f.orders.Load(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, resp.Data.OrderID, stored.OrderID)

	c, err := f.carts.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, c.Empty(), "cart must be cleared after a successful order")
}

func TestSubmitTwiceChargesOnce(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	rec := f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A back-to-back resubmission sees the cleared cart once it holds
	// the lock and must not produce a second order.
	rec = f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "EMPTY_CART")
	require.Equal(t, 1, f.provider.charges)

	first, err := f.orders.Load(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, first.OrderID)
}

func TestSubmitValidationErrors(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	body := submitBody()
	body["address"].(map[string]any)["email"] = "nope"
	rec := f.post(t, "/carts/"+id+"/checkout", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "VALIDATION", resp.Error.Code)
	require.Equal(t, "Invalid email format", resp.Error.Details["email"])
	require.Equal(t, 0, f.provider.charges, "payment must not run for an invalid form")
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(t)
	id := f.carts.Create()
	require.NoError(t, f.store.Save(context.Background(), id, nil))

	rec := f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "EMPTY_CART")
}

func TestSubmitUnknownCart(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, "/carts/missing/checkout", submitBody())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitPaymentDeclinedKeepsCart(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)
	f.provider.err = payment.ErrDeclined

	rec := f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	require.Contains(t, rec.Body.String(), "PAYMENT_FAILED")

	c, err := f.carts.Get(context.Background(), id)
	require.NoError(t, err)
	require.False(t, c.Empty(), "cart must survive a declined payment")

	_, err = f.orders.Load(context.Background(), id)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	locker := lock.TryLocker{R: f.redis, TTL: time.Minute}
	release, err := locker.Acquire(context.Background(), "checkout:"+id)
	require.NoError(t, err)
	defer release()

	rec := f.post(t, "/carts/"+id+"/checkout", submitBody())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "CHECKOUT_IN_FLIGHT")
	require.Equal(t, 0, f.provider.charges)
}

func TestSubmitBadPaymentMethod(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	body := submitBody()
	body["payment"].(map[string]any)["method"] = "paypal"
	rec := f.post(t, fmt.Sprintf("/carts/%s/checkout", id), body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.seedCart(t)

	rec := f.post(t, "/carts/"+id+"/quote", map[string]any{"region": "QC"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data checkout.Totals `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Data.Subtotal.Equal(decimal.RequireFromString("100")))
	require.True(t, resp.Data.Tax.Equal(decimal.RequireFromString("14.98")))
	require.True(t, resp.Data.Shipping.Equal(decimal.RequireFromString("10")))
	require.True(t, resp.Data.Total.Equal(decimal.RequireFromString("124.98")))
}
