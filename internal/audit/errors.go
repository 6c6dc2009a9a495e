package audit

import (
	"errors"
	"net/http"
)

// ErrInvalidEntry indicates an entry without an entity or action.
var ErrInvalidEntry = errors.New("audit entry requires entity, entity_id, and action")

// MapHTTPStatus maps audit domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidEntry) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func validate(e Entry) error {
	if e.Entity == "" || e.EntityID == "" || e.Action == "" {
		return ErrInvalidEntry
	}
	return nil
}
