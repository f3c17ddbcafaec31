package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bull/faq-semantic-index/internal/query"
)

// maxRequestBody caps /embed request bodies.
const maxRequestBody = 1 << 20

// Embedder is the query-time embedding dependency of the /embed handler.
type Embedder interface {
	EmbedQueries(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedRequest is the body of POST /embed.
type EmbedRequest struct {
	Texts []string `json:"texts"`
}

// EmbedResponse is returned on success; Vectors[i] embeds Texts[i].
type EmbedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewEmbedHandler creates the POST /embed handler.
// Missing, empty or blank texts yield 400 without touching the backend;
// backend failures yield 502. A partial vector list is never returned.
func NewEmbedHandler(embedder Embedder, metrics *Metrics, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req EmbedRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			metrics.observeEmbed("bad_request", 0)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
			return
		}
		if len(req.Texts) == 0 {
			metrics.observeEmbed("bad_request", 0)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "No texts provided"})
			return
		}

		done := metrics.startEmbed()
		vectors, err := embedder.EmbedQueries(r.Context(), req.Texts)
		done()
		if err != nil {
			if query.IsClientError(err) {
				metrics.observeEmbed("bad_request", 0)
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			if errors.Is(err, context.Canceled) {
				metrics.observeEmbed("canceled", 0)
				return
			}
			logger.Error("Embedding request failed", "texts", len(req.Texts), "error", err)
			metrics.observeEmbed("error", 0)
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "embedding backend failed"})
			return
		}

		metrics.observeEmbed("ok", len(req.Texts))
		writeJSON(w, http.StatusOK, EmbedResponse{Vectors: vectors})
	}
}
