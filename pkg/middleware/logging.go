package middleware

import (
	"net/http"
	"time"

	"github.com/lawrencelj/mdsearch/pkg/logger"
)

// Logging emits one access-log line per request through the request-scoped
// logger, so the request ID set upstream is attached automatically.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.FromContext(r.Context()).Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
