package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/JaimeStill/courier/internal/approvals"
	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/documents"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/storage"
)

// ErrUnexpectedStatus marks a response the client could not map to a
// domain error.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// known lists the errors the server may report. A response message that
// starts with one of these unwraps to it.
var known = []error{
	documents.ErrNotFound,
	documents.ErrDuplicate,
	documents.ErrLookupFailed,
	documents.ErrValidationFailed,
	documents.ErrMissingAsset,
	approvals.ErrNotFound,
	approvals.ErrMissingAttachment,
	approvals.ErrMissingManager,
	approvals.ErrMissingSignatureAsset,
	approvals.ErrMissingReason,
	approvals.ErrAlreadyDecided,
	approvals.ErrValidationFailed,
	approvals.ErrForbidden,
	attachments.ErrInvalidIndex,
	attachments.ErrValidationFailed,
	stamping.ErrInvalidRequest,
	stamping.ErrInvalidPDF,
	stamping.ErrInvalidPage,
	stamping.ErrInvalidAsset,
	stamping.ErrMissingBlob,
	users.ErrNotFound,
	users.ErrInvalidAsset,
	users.ErrForbidden,
	storage.ErrNotFound,
	auth.ErrSessionExpired,
	auth.ErrUnauthorized,
}

// APIError is a non-2xx response. It unwraps to the matching domain error
// so callers can use errors.Is while keeping the server's message.
type APIError struct {
	Status  int
	Message string
	err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.err
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: body.Error,
		err:     classify(resp.StatusCode, body.Error),
	}
}

func classify(status int, message string) error {
	for _, k := range known {
		text := k.Error()
		if message == text || strings.HasPrefix(message, text+":") {
			return k
		}
	}
	if status == http.StatusUnauthorized {
		if strings.Contains(message, auth.ErrSessionExpired.Error()) {
			return auth.ErrSessionExpired
		}
		return auth.ErrUnauthorized
	}
	return ErrUnexpectedStatus
}
