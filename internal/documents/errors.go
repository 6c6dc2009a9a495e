package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/storage"
)

// Domain errors for document operations.
var (
	ErrNotFound         = errors.New("document not found")
	ErrDuplicate        = errors.New("document already exists")
	ErrLookupFailed     = errors.New("document lookup failed")
	ErrValidationFailed = errors.New("document validation failed")
	ErrMissingAsset     = errors.New("caller has no image for the selected kind")
)

// MapHTTPStatus maps document domain errors, and the attachment, user,
// stamping, and storage errors document operations surface, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrLookupFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrMissingAsset),
		errors.Is(err, users.ErrInvalidAsset):
		return http.StatusBadRequest
	}

	if status := attachments.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := stamping.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return storage.MapHTTPStatus(err)
}
