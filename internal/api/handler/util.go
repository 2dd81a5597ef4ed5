package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/api/problem"
	"github.com/socialboost/panel/internal/models"
)

var validate = validator.New()

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// decodeJSON parses the body into dst and runs its validation tags.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid field %s", strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("invalid request body")
	}
	return nil
}

func requestEmail(r *http.Request) (string, bool) {
	email := middleware.UserEmailFromContext(r.Context())
	return email, middleware.UserRoleFromContext(r.Context()) == "admin"
}

// RespondServiceError translates ledger sentinel errors into problem
// responses; anything unrecognized becomes a 500.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		RespondError(w, r, http.StatusNotFound, "resource/not-found", "resource not found")
	case errors.Is(err, models.ErrDuplicateEmail):
		RespondError(w, r, http.StatusConflict, "users/duplicate-email", "email already registered")
	case errors.Is(err, models.ErrDuplicateBankID):
		RespondError(w, r, http.StatusConflict, "settings/duplicate-bank-id", err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-credentials", "invalid credentials")
	case errors.Is(err, models.ErrInvalidState):
		RespondError(w, r, http.StatusConflict, "ledger/invalid-state", err.Error())
	case errors.Is(err, models.ErrOutOfRange):
		RespondError(w, r, http.StatusBadRequest, "ledger/out-of-range", err.Error())
	case errors.Is(err, models.ErrInsufficientBalance):
		RespondError(w, r, http.StatusBadRequest, "ledger/insufficient-balance", "insufficient balance")
	default:
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
	}
}
