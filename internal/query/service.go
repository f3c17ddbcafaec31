// Package query is the query-time entry point to the embedding backend used at index time.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bull/faq-semantic-index/internal/embedding"
	"github.com/bull/faq-semantic-index/internal/faq"
)

// ErrEmptyInput is returned for an empty text list or a blank text.
// It wraps faq.ErrValidation so callers can treat it as a client error.
var ErrEmptyInput = fmt.Errorf("%w: no texts provided", faq.ErrValidation)

// Service embeds caller text with the same backend instance the indexer uses,
// so query vectors live in the same space as the indexed ones.
type Service struct {
	backend embedding.Backend
}

// NewService creates a query service over backend.
func NewService(backend embedding.Backend) *Service {
	return &Service{backend: backend}
}

// Model returns the backend's model identifier.
func (s *Service) Model() string { return s.backend.Model() }

// EmbedQuery embeds a single text.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedQueries(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedQueries embeds texts in order. Input is rejected before reaching the
// backend if it is empty or contains a blank text.
func (s *Service) EmbedQueries(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is blank", ErrEmptyInput, i)
		}
	}

	vectors, err := s.backend.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", embedding.ErrEmbedding, len(vectors), len(texts))
	}
	return vectors, nil
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, faq.ErrValidation)
}
