// Package server exposes the engine over HTTP: the versioned search API,
// health probes and the Prometheus scrape endpoint, wrapped in the
// request-id, CORS, timeout, logging and metrics middleware chain.
package server

import (
	"net/http"
	"time"

	"github.com/lawrencelj/mdsearch/pkg/health"
	"github.com/lawrencelj/mdsearch/pkg/metrics"
	"github.com/lawrencelj/mdsearch/pkg/middleware"
)

// NewRouter assembles the route table and middleware chain:
//
//	request → RequestID → CORS → Timeout → Logging → Metrics → mux
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/documents", h.Documents)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/documents/{id}/outline", h.Outline)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.Remove)
	mux.HandleFunc("POST /api/v1/reindex", h.Reindex)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Logging(chain)
	chain = middleware.Timeout(requestTimeout)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)
	return chain
}
