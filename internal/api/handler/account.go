package handler

import (
	"net/http"

	"github.com/socialboost/panel/internal/service"
)

// AccountHandler serves the signed-in user's own profile operations.
type AccountHandler struct {
	users *service.UserService
}

func NewAccountHandler(users *service.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, _ := requestEmail(r)
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	user, err := h.users.UpdateName(r.Context(), email, req.Name)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// UpdateEmail renames the caller's address. Re-authentication happens via
// the password in the body; the issued token keeps working only for the
// lifetime of its claims, so clients should log in again afterwards.
func (h *AccountHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewEmail string `json:"new_email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	user, err := h.users.RenameEmail(r.Context(), email, req.NewEmail, req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	if err := h.users.ChangePassword(r.Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *AccountHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Picture string `json:"picture" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	email, _ := requestEmail(r)
	user, err := h.users.UpdateProfilePicture(r.Context(), email, req.Picture)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}
