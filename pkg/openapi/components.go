package openapi

import (
	"maps"
	"net/http"
)

var errorSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"error": {Type: "string", Description: "Error message"},
	},
	Required: []string{"error"},
}

// Shared error responses, keyed by component name.
var errorResponses = map[string]string{
	"BadRequest":   "Validation failed or required input missing",
	"Unauthorized": "Missing, invalid, or expired session",
	"Forbidden":    "Caller may not act on this resource",
	"NotFound":     "Resource not found",
	"Conflict":     "Request was already decided or conflicts with existing state",
	"BadGateway":   "Backing store lookup failed",
}

// ErrorStatus maps the shared error response names to status codes.
var ErrorStatus = map[string]int{
	"BadRequest":   http.StatusBadRequest,
	"Unauthorized": http.StatusUnauthorized,
	"Forbidden":    http.StatusForbidden,
	"NotFound":     http.StatusNotFound,
	"Conflict":     http.StatusConflict,
	"BadGateway":   http.StatusBadGateway,
}

// NewComponents creates Components with the shared error schema and responses.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": errorSchema,
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 25},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields, - prefix for descending"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}

	for name, desc := range errorResponses {
		c.Responses[name] = &Response{
			Description: desc,
			Content: map[string]*MediaType{
				"application/json": {Schema: SchemaRef("Error")},
			},
		}
	}
	return c
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

// Responses builds an operation response map from a success response and
// the names of shared error responses.
func Responses(status int, ok *Response, errs ...string) map[int]*Response {
	out := map[int]*Response{status: ok}
	for _, name := range errs {
		if code, found := ErrorStatus[name]; found {
			out[code] = ResponseRef(name)
		}
	}
	return out
}
