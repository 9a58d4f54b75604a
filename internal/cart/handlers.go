package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/maplecart/storefront-api/internal/catalog"
	"github.com/maplecart/storefront-api/internal/common"
	"github.com/maplecart/storefront-api/internal/pricing"
)

// ProductSource resolves catalog products when lines are added. The
// cart snapshots price data at add time and never re-reads it.
type ProductSource interface {
	Get(ctx context.Context, id int) (catalog.Product, error)
}

// Handler exposes cart sessions over HTTP. Every mutation persists the
// resulting lines to the store before responding, so the mirror is
// always a post-state snapshot.
type Handler struct {
	Svc      *Service
	Store    *Store
	Products ProductSource
	Log      zerolog.Logger
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	Qty       int `json:"qty"`
}

type updateQtyRequest struct {
	Qty int `json:"qty"`
}

type summary struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	OriginalTotal decimal.Decimal `json:"originalTotal"`
	Savings       decimal.Decimal `json:"savings"`
	ItemCount     int             `json:"itemCount"`
}

// Create opens a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id := h.Svc.Create()
	if err := h.Store.Save(r.Context(), id, nil); err != nil {
		h.Log.Error().Err(err).Str("cart_id", id).Msg("persist new cart")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create cart", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]string{"cartId": id}})
}

// GetCart returns the cart contents together with its pricing summary.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	c, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, cartID, c.Lines())
}

// AddItem snapshots a catalog product into the cart. Quantity defaults
// to one when omitted.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if payload.Qty == 0 {
		payload.Qty = 1
	}
	p, err := h.Products.Get(r.Context(), payload.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "unable to load product", nil)
		return
	}
	line := Line{
		ProductID:       strconv.Itoa(p.ID),
		Title:           p.Title,
		Brand:           p.Brand,
		Thumbnail:       p.Thumbnail,
		UnitPrice:       decimal.NewFromFloat(p.Price),
		DiscountPercent: decimal.NewFromFloat(p.DiscountPercentage),
		Qty:             payload.Qty,
	}
	lines, err := h.Svc.Add(r.Context(), cartID, line)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.persistAndRespond(w, r, cartID, lines)
}

// UpdateItem sets the quantity for one line; zero removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	productID := chi.URLParam(r, "productId")
	var payload updateQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	lines, err := h.Svc.UpdateQty(r.Context(), cartID, productID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.persistAndRespond(w, r, cartID, lines)
}

// RemoveItem deletes one line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	productID := chi.URLParam(r, "productId")
	lines, err := h.Svc.Remove(r.Context(), cartID, productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.persistAndRespond(w, r, cartID, lines)
}

func (h *Handler) persistAndRespond(w http.ResponseWriter, r *http.Request, cartID string, lines []Line) {
	if err := h.Store.Save(r.Context(), cartID, lines); err != nil {
		h.Log.Error().Err(err).Str("cart_id", cartID).Msg("persist cart")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.respond(w, http.StatusOK, cartID, lines)
}

func (h *Handler) respond(w http.ResponseWriter, status int, cartID string, lines []Line) {
	sum, err := summarize(lines)
	if err != nil {
		h.Log.Error().Err(err).Str("cart_id", cartID).Msg("summarize cart")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to summarize cart", nil)
		return
	}
	common.JSON(w, status, map[string]any{"data": map[string]any{
		"cartId":  cartID,
		"items":   lines,
		"summary": sum,
	}})
}

func summarize(lines []Line) (summary, error) {
	plines := make([]pricing.Line, 0, len(lines))
	count := 0
	for _, l := range lines {
		plines = append(plines, l.PricingLine())
		count += l.Qty
	}
	subtotal, err := pricing.Subtotal(plines)
	if err != nil {
		return summary{}, err
	}
	original, err := pricing.OriginalTotal(plines)
	if err != nil {
		return summary{}, err
	}
	savings, err := pricing.TotalSavings(plines)
	if err != nil {
		return summary{}, err
	}
	return summary{
		Subtotal:      pricing.Round2(subtotal),
		OriginalTotal: pricing.Round2(original),
		Savings:       pricing.Round2(savings),
		ItemCount:     count,
	}, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart or item not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
