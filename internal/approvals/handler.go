package approvals

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/handlers"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/routes"
)

// Handler provides HTTP endpoints for the approval workflow.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "approvals"),
	}
}

// Routes returns the route group definition for approval endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Approval request ID")

	return routes.Group{
		Prefix:  "/approvals",
		Tags:    []string{"Approvals"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Request approval from a manager",
					RequestBody: openapi.RequestBodyJSON("ApprovalCreate", true),
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Created request", "ApprovalRequest"), "BadRequest", "Unauthorized"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/my-requests",
				Handler: h.MyRequests,
				OpenAPI: &openapi.Operation{
					Summary:     "List the caller's requests",
					Description: "Decided requests are marked seen as they are returned.",
					Responses:   openapi.Responses(http.StatusOK, listResponse("Requests"), "Unauthorized"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/pending",
				Handler: h.Pending,
				OpenAPI: &openapi.Operation{
					Summary:   "List requests waiting on the caller's decision",
					Responses: openapi.Responses(http.StatusOK, listResponse("Pending requests"), "Unauthorized"),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Get a request",
					Parameters: []*openapi.Parameter{id},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Request", "ApprovalRequest"), "Unauthorized", "Forbidden", "NotFound"),
				},
			},
			{
				Method:  "PUT",
				Pattern: "/{id}",
				Handler: h.Decide,
				OpenAPI: &openapi.Operation{
					Summary:     "Approve or reject a pending request",
					Parameters:  []*openapi.Parameter{id},
					RequestBody: openapi.RequestBodyJSON("ApprovalDecision", true),
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Decided request", "ApprovalRequest"),
						"BadRequest", "Unauthorized", "Forbidden", "NotFound", "Conflict"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/{id}/seen",
				Handler: h.MarkSeen,
				OpenAPI: &openapi.Operation{
					Summary:    "Acknowledge a decision",
					Parameters: []*openapi.Parameter{id},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Request", "ApprovalRequest"), "Unauthorized", "Forbidden", "NotFound"),
				},
			},
			{
				Method:  "POST",
				Pattern: "/{id}/resend",
				Handler: h.Resend,
				OpenAPI: &openapi.Operation{
					Summary:     "Open a new request from a rejected one",
					Parameters:  []*openapi.Parameter{id},
					RequestBody: openapi.RequestBodyJSON("ApprovalResend", false),
					Responses: openapi.Responses(http.StatusCreated, openapi.ResponseJSON("New request", "ApprovalRequest"),
						"BadRequest", "Unauthorized", "Forbidden", "NotFound"),
				},
			},
			{
				Method:  "PUT",
				Pattern: "/{id}/attachment",
				Handler: h.AttachSigned,
				OpenAPI: &openapi.Operation{
					Summary:     "Record the signed copy of approved evidence",
					Parameters:  []*openapi.Parameter{id},
					RequestBody: openapi.RequestBodyJSON("ApprovalAttachSigned", true),
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Request", "ApprovalRequest"),
						"BadRequest", "Unauthorized", "Forbidden", "NotFound"),
				},
			},
		},
	}
}

// NotificationRoutes returns the badge count route group.
func (h *Handler) NotificationRoutes() routes.Group {
	return routes.Group{
		Prefix: "/notifications",
		Tags:   []string{"Notifications"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/count",
				Handler: h.NotificationCount,
				OpenAPI: &openapi.Operation{
					Summary:   "Count the caller's unseen decisions and pending queue",
					Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Count", "NotificationCount"), "Unauthorized"),
				},
			},
		},
	}
}

func listResponse(description string) *openapi.Response {
	return &openapi.Response{
		Description: description,
		Content: map[string]*openapi.MediaType{
			"application/json": {Schema: openapi.ArrayOf("ApprovalRequest")},
		},
	}
}

// Create opens a request on behalf of the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	req, err := h.sys.Create(r.Context(), caller, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, req)
}

// MyRequests lists the caller's requests.
func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	items, err := h.sys.MyRequests(r.Context(), caller)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}

// Pending lists requests awaiting the caller's decision.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	items, err := h.sys.Pending(r.Context(), caller)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns a request visible to the caller.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	req, err := h.sys.Find(r.Context(), caller, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, req)
}

// Decide applies an approve or reject decision.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var cmd DecisionCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	req, err := h.sys.Decide(r.Context(), caller, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, req)
}

// MarkSeen acknowledges the caller's copy of a decision.
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	req, err := h.sys.MarkSeen(r.Context(), caller, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, req)
}

// Resend opens a new request from a rejected one. The body is optional.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var cmd ResendCommand
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
			return
		}
	}

	req, err := h.sys.Resend(r.Context(), caller, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, req)
}

// AttachSigned records the signed copy of approved evidence.
func (h *Handler) AttachSigned(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var cmd AttachSignedCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidationFailed)
		return
	}

	req, err := h.sys.AttachSigned(r.Context(), caller, id, cmd.URL)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, req)
}

// NotificationCount returns the caller's badge count.
func (h *Handler) NotificationCount(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	count, err := h.sys.NotificationCount(r.Context(), caller)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, count)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, _, err := auth.CallerID(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) callerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return caller, id, true
}

var schemas = map[string]*openapi.Schema{
	"ApprovalRequest": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                    {Type: "string", Format: "uuid"},
			"approval_number":       {Type: "string", Example: "APR-2025-0001"},
			"title":                 {Type: "string"},
			"description":           {Type: "string"},
			"requester_id":          {Type: "string", Format: "uuid"},
			"manager_id":            {Type: "string", Format: "uuid"},
			"attachment_url":        {Type: "string"},
			"status":                {Type: "string", Enum: []any{"pending", "approved", "rejected"}},
			"rejection_reason":      {Type: "string"},
			"signature_type":        {Type: "string", Enum: []any{"signature", "stamp"}},
			"signature_position":    openapi.SchemaRef("Placement"),
			"signed_attachment_url": {Type: "string"},
			"is_seen":               {Type: "boolean"},
			"created_at":            {Type: "string", Format: "date-time"},
			"updated_at":            {Type: "string", Format: "date-time"},
			"decided_at":            {Type: "string", Format: "date-time"},
		},
	},
	"ApprovalCreate": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title":           {Type: "string"},
			"description":     {Type: "string"},
			"manager_id":      {Type: "string", Format: "uuid"},
			"attachment_url":  {Type: "string"},
			"attachment_name": {Type: "string"},
		},
		Required: []string{"title", "manager_id", "attachment_url"},
	},
	"ApprovalDecision": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"action":             {Type: "string", Enum: []any{"approve", "reject"}},
			"signature_type":     {Type: "string", Enum: []any{"signature", "stamp"}},
			"signature_position": openapi.SchemaRef("Placement"),
			"page":               {Type: "integer"},
			"reason":             {Type: "string"},
		},
		Required: []string{"action"},
	},
	"ApprovalResend": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title":          {Type: "string"},
			"description":    {Type: "string"},
			"manager_id":     {Type: "string", Format: "uuid"},
			"attachment_url": {Type: "string"},
		},
	},
	"ApprovalAttachSigned": {
		Type:       "object",
		Properties: map[string]*openapi.Schema{"url": {Type: "string"}},
		Required:   []string{"url"},
	},
	"NotificationCount": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"requester": {Type: "integer"},
			"manager":   {Type: "integer"},
			"total":     {Type: "integer"},
		},
	},
}
