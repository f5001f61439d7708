package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lawrencelj/mdsearch/pkg/logger"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// HeaderRequestID is the header the middleware reads and echoes back.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns each request an identifier, reusing the caller's when
// one is supplied, and threads it through the context and the
// request-scoped logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logger.WithRequestID(ctx, id)
		w.Header().Set(HeaderRequestID, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the identifier stored by RequestID, or an empty
// string outside a request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
