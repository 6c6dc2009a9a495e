package attachments

import (
	"errors"
	"net/http"
)

// Domain errors for attachment operations.
var (
	ErrInvalidIndex     = errors.New("attachment index out of range")
	ErrValidationFailed = errors.New("attachment requires a url")
)

// MapHTTPStatus maps attachment domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidIndex) || errors.Is(err, ErrValidationFailed) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
