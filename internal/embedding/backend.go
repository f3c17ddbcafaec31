// Package embedding turns text into fixed-length vectors through one of several
// interchangeable backends.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bull/faq-semantic-index/internal/config"
)

var (
	ErrEmbedding         = errors.New("embedding failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Backend produces one vector per input text, in input order.
// Implementations must be safe for concurrent use.
type Backend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// New builds the backend named by cfg.Backend. The choice is made once and
// shared by the indexer and the query service so both produce comparable vectors.
func New(cfg config.EmbeddingConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocal(cfg.Local.Dimension), nil
	case config.BackendRemote:
		return NewRemote(RemoteOptions{
			BaseURL:           cfg.Remote.BaseURL,
			Model:             cfg.Remote.Model,
			Timeout:           cfg.Remote.Timeout,
			Concurrency:       cfg.Remote.Concurrency,
			RequestsPerSecond: cfg.Remote.RequestsPerSecond,
			Logger:            logger,
		}), nil
	case config.BackendOpenAI:
		return NewOpenAI(OpenAIOptions{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			BatchSize: cfg.OpenAI.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}

// validateVectors checks a backend response: one vector per text, one shared
// non-zero length, finite components only.
func validateVectors(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbedding, len(vectors), want)
	}
	if want == 0 {
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: empty vector at index 0", ErrEmbedding)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: %w: vector %d has %d dimensions, expected %d",
				ErrEmbedding, ErrDimensionMismatch, i, len(vec), dim)
		}
		for j, v := range vec {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: vector %d has non-finite component at %d", ErrEmbedding, i, j)
			}
		}
	}
	return nil
}

// toFloat32 converts []float64 to []float32.
// Embedding APIs return float64, Qdrant stores float32.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
