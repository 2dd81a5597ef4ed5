package handler

import (
	"net/http"

	"github.com/socialboost/panel/internal/service"
)

// OrderHandler serves the dashboard's order views and checkout.
type OrderHandler struct {
	orders  *service.OrderService
	catalog *service.CatalogService
}

func NewOrderHandler(orders *service.OrderService, catalog *service.CatalogService) *OrderHandler {
	return &OrderHandler{orders: orders, catalog: catalog}
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, _ := requestEmail(r)
	orders, err := h.orders.ListForUser(r.Context(), email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, orders)
}

type placeOrderRequest struct {
	PlatformID    string `json:"platform_id" validate:"required"`
	ServiceID     string `json:"service_id" validate:"required"`
	Quantity      int64  `json:"quantity" validate:"required,gt=0"`
	Link          string `json:"link" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=balance card"`
}

// Place runs checkout. Balance payments debit and insert atomically; card
// payments charge the gateway first and never touch the balance.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)

	if req.PaymentMethod == "card" {
		svc, cost, err := h.catalog.Quote(r.Context(), req.PlatformID, req.ServiceID, req.Quantity)
		if err != nil {
			RespondServiceError(w, r, err)
			return
		}
		order, err := h.orders.PlaceWithCard(r.Context(), email, service.PlaceOrderInput{
			PlatformID: req.PlatformID,
			Service:    svc.Name,
			Link:       req.Link,
			Quantity:   req.Quantity,
			CostMicros: cost,
		})
		if err != nil {
			RespondServiceError(w, r, err)
			return
		}
		RespondJSON(w, http.StatusCreated, order)
		return
	}

	order, err := h.orders.PlaceFromBalance(r.Context(), email, req.PlatformID, req.ServiceID, req.Quantity, req.Link)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}
