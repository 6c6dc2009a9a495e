package stamping

import (
	"errors"
	"net/http"
)

// Domain errors for compositing.
var (
	ErrInvalidRequest = errors.New("invalid stamp request")
	ErrInvalidPDF     = errors.New("source is not a readable pdf")
	ErrInvalidPage    = errors.New("page out of range")
	ErrInvalidAsset   = errors.New("asset is not a usable image")
	ErrMissingBlob    = errors.New("stored file not found")
)

// MapHTTPStatus maps stamping errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingBlob):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidPDF),
		errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidAsset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
