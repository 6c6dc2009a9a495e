package audit

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/courier/pkg/handlers"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/routes"
)

// Handler provides HTTP endpoints for the audit log.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler for the given audit system.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "audit"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for audit endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/audit",
		Tags:    []string{"Audit"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List audit entries, newest first",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("entity", "string", "approval or document", false),
						openapi.QueryParam("entity_id", "string", "Entity identifier", false),
						openapi.QueryParam("action", "string", "Recorded action", false),
						openapi.QueryParam("actor", "string", "Acting user id", false),
						openapi.QueryParam("after", "string", "RFC 3339 lower bound", false),
						openapi.QueryParam("before", "string", "RFC 3339 upper bound", false),
					},
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseJSON("Audit page", "AuditPage"),
						"Unauthorized",
					),
				},
			},
		},
	}
}

// List returns a page of audit entries filtered by query parameters.
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

var schemas = map[string]*openapi.Schema{
	"AuditDelta": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"user_id": {Type: "string", Format: "uuid"},
			"role":    {Type: "string", Enum: []any{RoleRequester, RoleManager}},
			"delta":   {Type: "integer"},
		},
	},
	"AuditEntry": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":          {Type: "string", Format: "uuid"},
			"entity":      {Type: "string"},
			"entity_id":   {Type: "string"},
			"action":      {Type: "string"},
			"actor":       {Type: "string"},
			"from_status": {Type: "string"},
			"to_status":   {Type: "string"},
			"detail":      {Type: "string"},
			"deltas":      openapi.ArrayOf("AuditDelta"),
			"created_at":  {Type: "string", Format: "date-time"},
		},
	},
	"AuditPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        openapi.ArrayOf("AuditEntry"),
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
}
