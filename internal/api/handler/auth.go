package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/service"
)

type AuthHandler struct {
	users      *service.UserService
	adminEmail string
	tokenTTL   time.Duration
}

func NewAuthHandler(users *service.UserService, adminEmail string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:      users,
		adminEmail: strings.ToLower(adminEmail),
		tokenTTL:   tokenTTL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	role := "user"
	if strings.EqualFold(user.Email, h.adminEmail) {
		role = "admin"
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"email": user.Email,
		"role":  role,
		"sub":   user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(h.tokenTTL).Unix(),
	}
	if iss := middleware.JWTIssuer(); iss != "" {
		claims["iss"] = iss
	}
	if aud := middleware.JWTAudience(); aud != "" {
		claims["aud"] = aud
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(middleware.JWTSecret())
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "auth/sign-failed", "failed to sign token")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"token": tokenString,
		"role":  role,
		"user":  user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.users.Logout()
	RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RequestPasswordReset always acknowledges, whether or not the account
// exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", err.Error())
		return
	}
	h.users.RequestPasswordReset(r.Context(), req.Email)
	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}
