package tenant

import (
	"context"
	"net/http"
	"strings"
)

// DefaultHeader carries the tenant id on every API request
const DefaultHeader = "X-Tenant-ID"

type contextKey struct{}

// WithTenant returns a copy of ctx carrying the tenant id
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, tenantID)
}

// FromContext returns the tenant id set by the middleware
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

/* Middleware resolves the tenant from header and stores it in the request context
 * Requests without the header are handed to missing and never reach next
 */
func Middleware(header string, missing http.HandlerFunc) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(header))
			if id == "" {
				missing(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), id)))
		})
	}
}
