// Package main provides the query-time embedding server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bull/faq-semantic-index/internal/config"
	"github.com/bull/faq-semantic-index/internal/embedding"
	"github.com/bull/faq-semantic-index/internal/httpapi"
	mcpserver "github.com/bull/faq-semantic-index/internal/mcp"
	"github.com/bull/faq-semantic-index/internal/query"
	"github.com/bull/faq-semantic-index/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	if err := run(); err != nil {
		slog.Error("embed server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	// One backend instance serves every request, loaded once at startup
	backend, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return err
	}
	service := query.NewService(backend)

	mcpCfg := &mcpserver.Config{
		Embedder:   service,
		Collection: cfg.Index.Collection,
	}
	routerCfg := httpapi.RouterConfig{
		Embedder: service,
		Model:    service.Model(),
		Metrics:  httpapi.NewMetrics(service.Model()),
		Logger:   logger,
	}

	// Optional vector store for /health and the collection_info tool
	if cfg.Server.StoreTools {
		store, err := storage.NewQdrantStorage(storage.Config{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		mcpCfg.Store = store
		routerCfg.Store = store
	}

	routerCfg.MCP = mcpserver.NewHTTPHandler(mcpserver.NewServer(mcpCfg), &mcpserver.HTTPHandlerOptions{Stateless: true})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           httpapi.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting embed server",
			"addr", srv.Addr,
			"backend", cfg.Embedding.Backend,
			"model", service.Model(),
			"store_tools", cfg.Server.StoreTools,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
