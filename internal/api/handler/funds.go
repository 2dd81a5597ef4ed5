package handler

import (
	"net/http"

	"github.com/socialboost/panel/internal/service"
)

// FundHandler serves manual bank transfers and card top-ups.
type FundHandler struct {
	funds   *service.FundService
	catalog *service.CatalogService
}

func NewFundHandler(funds *service.FundService, catalog *service.CatalogService) *FundHandler {
	return &FundHandler{funds: funds, catalog: catalog}
}

func (h *FundHandler) Banks(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.PaymentSettings(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, settings)
}

func (h *FundHandler) File(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountMicros int64  `json:"amount_micros" validate:"required,gt=0"`
		BankID       string `json:"bank_id" validate:"required"`
		ProofImage   string `json:"proof_image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	request, err := h.funds.File(r.Context(), email, req.AmountMicros, req.BankID, req.ProofImage)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, request)
}

func (h *FundHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, _ := requestEmail(r)
	requests, err := h.funds.ListForUser(r.Context(), email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, requests)
}

// TopUpCard charges the simulated gateway and credits the balance right
// away.
func (h *FundHandler) TopUpCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountMicros int64 `json:"amount_micros" validate:"required,gt=0"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	order, err := h.funds.TopUpWithCard(r.Context(), email, req.AmountMicros)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}
