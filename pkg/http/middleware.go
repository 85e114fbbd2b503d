package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// ResourceKey is the context key for the resource
type ResourceKey string

const (
	// ResourceContextKey is the key used to store the resource in the context
	ResourceContextKey ResourceKey = "resource"
)

// Resource describes which object an API request acts on
type Resource struct {
	// Type is the type of resource (e.g. "network", "node")
	Type string
	// Name is the path segment identifying the resource, if any
	Name string
	// Action is derived from the HTTP method
	Action string
}

// WithResource adds a resource annotation to the request context
func WithResource(r *http.Request, resource Resource) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ResourceContextKey, resource))
}

// ResourceFromContext retrieves the resource from the request context
func ResourceFromContext(r *http.Request) (Resource, bool) {
	resource, ok := r.Context().Value(ResourceContextKey).(Resource)
	return resource, ok
}

// ResourceMiddleware annotates requests under /api/v1/<resourceType>/... and
// logs each one once it completes.
func ResourceMiddleware(resourceType string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resource := Resource{
				Type:   resourceType,
				Name:   resourceName(r.URL.Path, resourceType),
				Action: actionFor(r.Method),
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, WithResource(r, resource))

			log.Debug("API request",
				"resource", resource.Type,
				"name", resource.Name,
				"action", resource.Action,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

func resourceName(path, resourceType string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == resourceType && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "view"
	}
}
