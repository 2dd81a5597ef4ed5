package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/service"
)

// AdminHandler groups every operation behind the admin role.
type AdminHandler struct {
	users     *service.UserService
	orders    *service.OrderService
	funds     *service.FundService
	inbox     *service.InboxService
	catalog   *service.CatalogService
	audit     *service.AuditService
	integrity *service.IntegrityService
}

func NewAdminHandler(
	users *service.UserService,
	orders *service.OrderService,
	funds *service.FundService,
	inbox *service.InboxService,
	catalog *service.CatalogService,
	audit *service.AuditService,
	integrity *service.IntegrityService,
) *AdminHandler {
	return &AdminHandler{
		users:     users,
		orders:    orders,
		funds:     funds,
		inbox:     inbox,
		catalog:   catalog,
		audit:     audit,
		integrity: integrity,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BalanceMicros int64 `json:"balance_micros"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	user, err := h.users.SetBalance(r.Context(), chi.URLParam(r, "email"), req.BalanceMicros, actor)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) RenameUserEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewEmail string `json:"new_email" validate:"required,email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	user, err := h.users.RenameEmailByAdmin(r.Context(), chi.URLParam(r, "email"), req.NewEmail, actor)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateUserName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	user, err := h.users.UpdateName(r.Context(), chi.URLParam(r, "email"), req.Name)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	if err := h.users.ResetPasswordByAdmin(r.Context(), chi.URLParam(r, "email"), req.NewPassword, actor); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := requestEmail(r)
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "email"), actor); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "user deleted"})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	order, err := h.orders.SetStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status, actor)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) ListFundRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.funds.ListAll(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, requests)
}

func (h *AdminHandler) DecideFundRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision string `json:"decision" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	request, err := h.funds.Decide(r.Context(), chi.URLParam(r, "requestID"), req.Decision, actor)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, request)
}

func (h *AdminHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email" validate:"required,email"`
		Body      string `json:"body" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	msg, err := h.inbox.Send(r.Context(), req.UserEmail, req.Body)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, msg)
}

func (h *AdminHandler) UpdateServicePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlatformID  string `json:"platform_id" validate:"required"`
		ServiceID   string `json:"service_id" validate:"required"`
		PriceMicros int64  `json:"price_micros" validate:"gte=0"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	if err := h.catalog.UpdatePrice(r.Context(), req.PlatformID, req.ServiceID, req.PriceMicros, actor); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "price updated"})
}

func (h *AdminHandler) ReplaceBanks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Banks []models.Bank `json:"banks" validate:"required,dive"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	actor, _ := requestEmail(r)
	if err := h.catalog.ReplaceBanks(r.Context(), req.Banks, actor); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "banks replaced"})
}

func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-query", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	entries, err := h.audit.List(r.Context(), limit)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) IntegrityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.integrity.Run(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
