// Package routes declares route groups once and uses them both for mux
// registration and for OpenAPI path generation.
package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/courier/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags are applied to every
// documented operation in the group that does not declare its own.
type Group struct {
	Prefix   string
	Tags     []string
	Schemas  map[string]*openapi.Schema
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		walk("", nil, g, func(path string, _ []string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Document adds every documented route and group schema to spec.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		collectSchemas(spec, g)
		walk("", nil, g, func(path string, tags []string, r Route) {
			if r.OpenAPI == nil {
				return
			}
			op := *r.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = tags
			}
			spec.AddOperation(r.Method, openAPIPath(path), &op)
		})
	}
}

func walk(parent string, tags []string, g Group, fn func(path string, tags []string, r Route)) {
	prefix := parent + g.Prefix
	if len(g.Tags) > 0 {
		tags = g.Tags
	}
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, tags, r)
	}
	for _, child := range g.Children {
		walk(prefix, tags, child, fn)
	}
}

func collectSchemas(spec *openapi.Spec, g Group) {
	if len(g.Schemas) > 0 {
		spec.Components.AddSchemas(g.Schemas)
	}
	for _, child := range g.Children {
		collectSchemas(spec, child)
	}
}

// openAPIPath rewrites ServeMux wildcards ({key...}) to OpenAPI form ({key}).
func openAPIPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}
