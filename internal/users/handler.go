package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/handlers"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/routes"
	"github.com/JaimeStill/courier/pkg/storage"
)

// Handler provides HTTP endpoints for the user directory.
type Handler struct {
	sys           System
	storage       storage.System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, blob store, logger, and upload size limit.
func NewHandler(sys System, store storage.System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		storage:       store,
		logger:        logger.With("handler", "users"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for user endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/users",
		Tags:    []string{"Users"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/managers",
				Handler: h.Managers,
				OpenAPI: &openapi.Operation{
					Summary:   "List users who may receive approval requests",
					Responses: openapi.Responses(http.StatusOK, &openapi.Response{
						Description: "Managers",
						Content: map[string]*openapi.MediaType{
							"application/json": {Schema: openapi.ArrayOf("User")},
						},
					}, "Unauthorized"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/me",
				Handler: h.Me,
				OpenAPI: &openapi.Operation{
					Summary:   "Return the caller's directory entry",
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Caller", "User"), "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "PUT",
				Pattern: "/{id}/assets/{kind}",
				Handler: h.SetAsset,
				OpenAPI: &openapi.Operation{
					Summary: "Upload the user's signature or stamp image",
					Parameters: []*openapi.Parameter{
						openapi.PathParam("id", "User ID"),
						openapi.PathString("kind", "signature or stamp"),
					},
					RequestBody: &openapi.RequestBody{
						Required: true,
						Content: map[string]*openapi.MediaType{
							"multipart/form-data": {Schema: &openapi.Schema{
								Type:       "object",
								Properties: map[string]*openapi.Schema{"file": {Type: "string", Format: "binary"}},
								Required:   []string{"file"},
							}},
						},
					},
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Updated user", "User"),
						"BadRequest", "Unauthorized", "Forbidden", "NotFound"),
				},
			},
		},
	}
}

// Managers lists users with a manager role.
func (h *Handler) Managers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.sys.Managers(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, managers)
}

// Me returns the directory entry of the session user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	u, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, u)
}

// SetAsset stores an uploaded image as the user's signature or stamp.
// Only the user themselves or an admin may replace an asset.
func (h *Handler) SetAsset(w http.ResponseWriter, r *http.Request) {
	caller, session, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	kind, err := ParseAssetKind(r.PathValue("kind"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if caller != id && session.Role != "admin" {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrForbidden), ErrForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("assets/%s/%s%s", id, kind, filepath.Ext(header.Filename))
	if _, err := h.storage.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type")); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
		return
	}

	u, err := h.sys.SetAsset(r.Context(), id, kind, key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

var schemas = map[string]*openapi.Schema{
	"User": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":            {Type: "string", Format: "uuid"},
			"name":          {Type: "string"},
			"email":         {Type: "string"},
			"role":          {Type: "string", Example: "manager"},
			"signature_key": {Type: "string"},
			"stamp_key":     {Type: "string"},
			"created_at":    {Type: "string", Format: "date-time"},
		},
	},
}
