package httpx

import (
	"errors"
	"net/http"

	"github.com/warta-media/warta/internal/shared"
)

// ErrValidation marks request payloads that failed validation.
var ErrValidation = errors.New("validation failed")

// RespondError maps domain errors to HTTP responses using RFC7807.
//
// Token failures collapse to a single 401 body regardless of cause, and
// policy denials to a single 403, so clients cannot distinguish which
// check rejected them.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrTokenInvalid), errors.Is(err, shared.ErrTokenExpired):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrForbiddenRole):
		Problem(w, http.StatusForbidden, "Forbidden", "operation not allowed")
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, shared.ErrDuplicateIdentity):
		Problem(w, http.StatusConflict, "Duplicate", "identity already exists")
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
