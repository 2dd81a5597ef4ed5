package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/service"
)

// PublicAPIHandler is the key-authenticated surface external tools script
// against.
type PublicAPIHandler struct {
	orders  *service.OrderService
	catalog *service.CatalogService
}

func NewPublicAPIHandler(orders *service.OrderService, catalog *service.CatalogService) *PublicAPIHandler {
	return &PublicAPIHandler{orders: orders, catalog: catalog}
}

func (h *PublicAPIHandler) Services(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.catalog.Platforms(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, platforms)
}

func (h *PublicAPIHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.APIUserFromContext(r.Context())
	if user == nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/api-key-required", "API key required")
		return
	}

	var req struct {
		PlatformID string `json:"platform_id" validate:"required"`
		ServiceID  string `json:"service_id" validate:"required"`
		Quantity   int64  `json:"quantity" validate:"required,gt=0"`
		Link       string `json:"link" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}

	order, err := h.orders.PlaceFromBalance(r.Context(), user.Email, req.PlatformID, req.ServiceID, req.Quantity, req.Link)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}

// GetOrder returns the caller's own order; anyone else's id reads as
// missing.
func (h *PublicAPIHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.APIUserFromContext(r.Context())
	if user == nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/api-key-required", "API key required")
		return
	}

	orderID := chi.URLParam(r, "orderID")
	order, err := h.orders.GetForOwner(r.Context(), orderID, user.Email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}
