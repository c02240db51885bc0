package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

// apiError is the envelope every non-2xx response carries. Code gives
// clients something stable to match on; Error is for humans.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps service-level sentinels to a status and error code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""

	switch {
	case errors.Is(err, common.ErrTokenExpired):
		status, code = http.StatusUnauthorized, "token_expired"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		status, code = http.StatusUnauthorized, "refresh_token_expired"
	case errors.Is(err, common.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrReauthRequired):
		status, code = http.StatusForbidden, "reauth_required"
	case errors.Is(err, common.ErrorForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorEmailAlreadyExists):
		status, code = http.StatusConflict, "email_exists"
	case errors.Is(err, common.ErrVersionConflict):
		status, code = http.StatusConflict, "version_conflict"
	case errors.Is(err, common.ErrorValidation):
		status, code = http.StatusBadRequest, "validation"
	}

	writeJSON(w, status, &apiError{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into v, translating malformed input
// into a validation error.
func readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}
