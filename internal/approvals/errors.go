package approvals

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/users"
)

// Domain errors for approval operations.
var (
	ErrNotFound              = errors.New("approval request not found")
	ErrMissingAttachment     = errors.New("approval request requires an attachment")
	ErrMissingManager        = errors.New("approval request requires a manager")
	ErrMissingSignatureAsset = errors.New("manager has no image for the selected signature type")
	ErrMissingReason         = errors.New("rejection requires a reason")
	ErrAlreadyDecided        = errors.New("approval request already decided")
	ErrValidationFailed      = errors.New("approval request validation failed")
	ErrForbidden             = errors.New("caller may not act on this approval request")
)

// MapHTTPStatus maps approval domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingAttachment),
		errors.Is(err, ErrMissingManager),
		errors.Is(err, ErrMissingSignatureAsset),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrValidationFailed),
		errors.Is(err, users.ErrInvalidAsset):
		return http.StatusBadRequest
	default:
		return attachments.MapHTTPStatus(err)
	}
}
