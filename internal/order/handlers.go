package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maplecart/storefront-api/internal/common"
)

// Handler serves the confirmation view's read-only order access.
type Handler struct {
	Store *Store
}

// GetLast returns the last completed order for a cart session.
func (h *Handler) GetLast(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	sessionID := chi.URLParam(r, "cartId")
	ord, err := h.Store.Load(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ord})
}
