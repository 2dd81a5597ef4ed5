package handler

import (
	"net/http"

	"github.com/socialboost/panel/internal/service"
)

type InboxHandler struct {
	inbox *service.InboxService
}

func NewInboxHandler(inbox *service.InboxService) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	email, _ := requestEmail(r)
	messages, err := h.inbox.ListForUser(r.Context(), email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, messages)
}

func (h *InboxHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	email, _ := requestEmail(r)
	updated, err := h.inbox.MarkAllRead(r.Context(), email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
