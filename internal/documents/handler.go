package documents

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/handlers"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	barcode := openapi.PathString("barcode", "Document barcode, e.g. IN-2025-007")
	index := openapi.PathString("index", "Position in the newest-first attachment list")

	return routes.Group{
		Prefix:  "/documents",
		Tags:    []string{"Documents"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List documents, newest first",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("search", "string", "Matches barcode, subject, sender, or receiver", false),
						openapi.QueryParam("sort", "string", "Sort fields, e.g. -CreatedAt", false),
						openapi.QueryParam("type", "string", "incoming or outgoing", false),
						openapi.QueryParam("priority", "string", "normal, urgent, or very_urgent", false),
						openapi.QueryParam("barcode", "string", "Barcode prefix", false),
					},
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Document page", "DocumentPage"), "Unauthorized", "BadGateway"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/search",
				Handler: h.Search,
				OpenAPI: &openapi.Operation{
					Summary:     "Search documents with pagination and filters",
					RequestBody: openapi.RequestBodyJSON("DocumentSearch", true),
					Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Document page", "DocumentPage"), "BadRequest", "Unauthorized", "BadGateway"),
				},
			},
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Register a document and assign its barcode",
					RequestBody: openapi.RequestBodyJSON("DocumentCreate", true),
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Created document", "Document"), "BadRequest", "Unauthorized", "Conflict"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{barcode}",
				Handler: h.Get,
				OpenAPI: &openapi.Operation{
					Summary:    "Get a document by exact barcode",
					Parameters: []*openapi.Parameter{barcode},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Document", "Document"), "Unauthorized", "NotFound", "BadGateway"),
				},
			},
			{
				Method:  "DELETE",
				Pattern: "/{barcode}",
				Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete a document with its attachments and timeline",
					Parameters: []*openapi.Parameter{barcode},
					Responses:  openapi.Responses(http.StatusNoContent, &openapi.Response{Description: "Deleted"}, "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{barcode}/attachments",
				Handler: h.Attachments,
				OpenAPI: &openapi.Operation{
					Summary:    "List a document's attachments, newest first",
					Parameters: []*openapi.Parameter{barcode},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Attachments", "AttachmentList"), "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/{barcode}/attachments",
				Handler: h.AddAttachment,
				OpenAPI: &openapi.Operation{
					Summary:     "Attach an uploaded file to a document",
					Parameters:  []*openapi.Parameter{barcode},
					RequestBody: openapi.RequestBodyJSON("Attachment", true),
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Attachments", "AttachmentList"), "BadRequest", "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "DELETE",
				Pattern: "/{barcode}/attachments/{index}",
				Handler: h.DeleteAttachment,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete the attachment at index",
					Parameters: []*openapi.Parameter{barcode, index},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Attachments", "AttachmentList"), "BadRequest", "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{barcode}/preview-url",
				Handler: h.PreviewURL,
				OpenAPI: &openapi.Operation{
					Summary: "Issue a time-limited preview URL for an attachment",
					Parameters: []*openapi.Parameter{
						barcode,
						openapi.QueryParam("index", "integer", "Attachment index, default 0", false),
					},
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Preview", "Preview"), "BadRequest", "Unauthorized", "NotFound"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/{barcode}/stamp",
				Handler: h.Stamp,
				OpenAPI: &openapi.Operation{
					Summary:     "Composite the caller's signature or stamp onto an attachment",
					Parameters:  []*openapi.Parameter{barcode},
					RequestBody: openapi.RequestBodyJSON("StampCommand", true),
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Attachments", "AttachmentList"), "BadRequest", "Unauthorized", "NotFound"),
				},
			},
		},
	}
}

// BarcodeRoutes returns the scanner-facing route group.
func (h *Handler) BarcodeRoutes() routes.Group {
	barcode := openapi.PathString("barcode", "Scanned or typed barcode, any case")

	return routes.Group{
		Prefix: "/barcodes",
		Tags:   []string{"Barcodes"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/{barcode}",
				Handler: h.Resolve,
				OpenAPI: &openapi.Operation{
					Summary:     "Resolve a barcode",
					Description: "Exact match first, then a unique prefix match.",
					Parameters:  []*openapi.Parameter{barcode},
					Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Document", "Document"), "Unauthorized", "NotFound", "BadGateway"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{barcode}/timeline",
				Handler: h.Timeline,
				OpenAPI: &openapi.Operation{
					Summary:    "List timeline entries, newest first",
					Parameters: []*openapi.Parameter{barcode},
					Responses: openapi.Responses(http.StatusOK, &openapi.Response{
						Description: "Timeline",
						Content: map[string]*openapi.MediaType{
							"application/json": {Schema: openapi.ArrayOf("TimelineEntry")},
						},
					}, "Unauthorized", "NotFound", "BadGateway"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/{barcode}/timeline",
				Handler: h.AppendTimeline,
				OpenAPI: &openapi.Operation{
					Summary:     "Append a note to the timeline",
					Parameters:  []*openapi.Parameter{barcode},
					RequestBody: openapi.RequestBodyJSON("TimelineCommand", true),
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Entry", "TimelineEntry"), "BadRequest", "Unauthorized", "NotFound"),
				},
			},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create registers a document from any accepted producer payload shape.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	doc, err := h.sys.Create(r.Context(), caller, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Get returns a document by exact barcode.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.Get(r.Context(), r.PathValue("barcode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Resolve returns the document a scanned barcode identifies.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.ResolveByBarcode(r.Context(), r.PathValue("barcode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document by barcode.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.Delete(r.Context(), caller, r.PathValue("barcode")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Timeline returns a document's timeline, newest first.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sys.Timeline(r.Context(), r.PathValue("barcode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entries)
}

// AppendTimeline records a note on a document's timeline.
func (h *Handler) AppendTimeline(w http.ResponseWriter, r *http.Request) {
	caller, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	var cmd TimelineCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	entry, err := h.sys.AppendTimeline(r.Context(), caller, r.PathValue("barcode"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, entry)
}

// Attachments lists a document's attachments.
func (h *Handler) Attachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.Attachments(r.Context(), r.PathValue("barcode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// AddAttachment binds an uploaded file to a document.
func (h *Handler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	var att attachments.Attachment
	if err := json.NewDecoder(r.Body).Decode(&att); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, attachments.ErrValidationFailed)
		return
	}

	list, err := h.sys.AddAttachment(r.Context(), r.PathValue("barcode"), att)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, list)
}

// DeleteAttachment removes the attachment at the path index.
func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, attachments.ErrInvalidIndex)
		return
	}

	list, err := h.sys.DeleteAttachment(r.Context(), r.PathValue("barcode"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// PreviewURL issues a preview URL for the attachment at the index query parameter.
func (h *Handler) PreviewURL(w http.ResponseWriter, r *http.Request) {
	index := 0
	if v := r.URL.Query().Get("index"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, attachments.ErrInvalidIndex)
			return
		}
		index = i
	}

	preview, err := h.sys.PreviewURL(r.Context(), r.PathValue("barcode"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, preview)
}

// Stamp composites the caller's signature or stamp onto an attachment.
func (h *Handler) Stamp(w http.ResponseWriter, r *http.Request) {
	caller, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	var cmd StampCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	list, err := h.sys.Stamp(r.Context(), caller, r.PathValue("barcode"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, list)
}
