// Package middleware provides the HTTP middleware chain for the API server:
// request identification, logging, CORS and metrics.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDKey keys the request ID in a request context.
type requestIDKey struct{}

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID for log correlation. A client-sent
// X-Request-ID is trusted as-is; otherwise a fresh UUID is generated. The ID
// is echoed on the response so callers can quote it when reporting problems.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored in ctx, or "" when the request
// did not pass through RequestID.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
