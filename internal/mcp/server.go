package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/faq-semantic-index/internal/storage"
)

// Embedder is the query-time embedding dependency.
type Embedder interface {
	EmbedQueries(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// CollectionReader is the read-only subset of the vector store used by collection_info.
type CollectionReader interface {
	GetCollectionInfo(ctx context.Context, collection string) (*storage.CollectionInfo, error)
	Scroll(ctx context.Context, collection string, limit int) ([]storage.Point, error)
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Embedder Embedder
	// Store is optional; collection_info is only registered when set.
	Store      CollectionReader
	Collection string
	Version    string
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "v0.1.0"
	}
	impl := &mcp.Implementation{
		Name:    "faq-semantic-index",
		Version: version,
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "embed_texts",
		Description: "Embed texts with the model used to index the FAQ collection. Returns one vector per text, in order.",
	}, makeEmbedHandler(cfg.Embedder))

	if cfg.Store != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "collection_info",
			Description: "Get the status, point count and vector configuration of the FAQ collection, optionally with sample entries.",
		}, makeCollectionInfoHandler(cfg.Store, cfg.Collection))
	}

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
