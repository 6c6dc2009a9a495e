package users

import (
	"errors"
	"net/http"
)

// Domain errors for user operations.
var (
	ErrNotFound     = errors.New("user not found")
	ErrDuplicate    = errors.New("user already exists")
	ErrInvalidAsset = errors.New("asset kind must be signature or stamp")
	ErrInvalidUser  = errors.New("name, email, and role are required")
	ErrForbidden    = errors.New("only the user or an admin may change assets")
	ErrInvalidFile  = errors.New("invalid asset file")
)

// MapHTTPStatus maps user domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidAsset), errors.Is(err, ErrInvalidUser), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
