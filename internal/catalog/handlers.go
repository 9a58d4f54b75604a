package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maplecart/storefront-api/internal/common"
)

// Handler exposes the read-only catalog proxy.
type Handler struct {
	Client *Client
}

// Products returns the full upstream product listing.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog client not configured", nil)
		return
	}
	products, err := h.Client.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "unable to load products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// ProductDetail returns a single product by id.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog client not configured", nil)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	product, err := h.Client.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "unable to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
