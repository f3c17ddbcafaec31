// Package httpapi serves query-time embeddings over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
)

// RouterConfig holds the embedding server's dependencies.
type RouterConfig struct {
	Embedder Embedder
	Model    string
	// Store is optional; /health reports its status when set.
	Store   HealthChecker
	Metrics *Metrics
	// MCP is mounted on /mcp when set.
	MCP         http.Handler
	Logger      *slog.Logger
	ServiceName string
}

// NewRouter assembles the server's routes behind the middleware chain.
// Method-qualified patterns make the mux answer 405 for other methods.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "faq-embed-server"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /embed", NewEmbedHandler(cfg.Embedder, cfg.Metrics, logger))
	mux.HandleFunc("GET /health", NewHealthHandler(cfg.Model, cfg.Store))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}
	if cfg.MCP != nil {
		mux.Handle("/mcp", cfg.MCP)
	}
	mux.HandleFunc("GET /{$}", NewLandingHandler())

	return Chain(mux,
		Recover(logger),
		RequestID(),
		Logger(logger),
		OTel(serviceName),
	)
}
