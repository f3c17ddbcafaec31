package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultOpenAIModel is the embedding model used when none is configured.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute rate limits.
	// OpenAI supports up to 2048 texts per batch, but smaller batches reduce TPM pressure.
	DefaultBatchSize = 500
)

// OpenAIOptions configures an OpenAI backend.
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string // optional, for OpenAI-compatible servers
	Model     string
	BatchSize int
	// MaxElapsed bounds the 429 retry loop per batch; 0 means 30s.
	MaxElapsed time.Duration
}

// OpenAI generates embeddings through an OpenAI-compatible embeddings API.
// It batches requests and retries with exponential backoff on rate limit errors.
type OpenAI struct {
	client     openai.Client
	model      string
	batchSize  int
	maxElapsed time.Duration
}

// NewOpenAI creates an OpenAI backend. An API key is required.
func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = 30 * time.Second
	}

	// Retries are handled by embedBatchWithRetry, not the SDK.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAI{
		client:     openai.NewClient(reqOpts...),
		model:      opts.Model,
		batchSize:  opts.BatchSize,
		maxElapsed: opts.MaxElapsed,
	}, nil
}

// Model returns the OpenAI model name.
func (e *OpenAI) Model() string { return e.model }

// Embed generates embeddings for the given texts in batches.
func (e *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	allEmbeddings := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		embeddings, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %w", ErrEmbedding, i, end, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d-%d returned %d vectors", ErrEmbedding, i, end, len(embeddings))
		}
		allEmbeddings = append(allEmbeddings, embeddings...)
	}

	if err := validateVectors(allEmbeddings, len(texts)); err != nil {
		return nil, err
	}
	return allEmbeddings, nil
}

// embedBatchWithRetry generates embeddings for a single batch.
// Retries with exponential backoff on HTTP 429; other errors fail immediately.
func (e *OpenAI) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		// Results carry their input index; place them accordingly.
		embeddings = make([][]float32, len(texts))
		for _, data := range resp.Data {
			if data.Index < 0 || int(data.Index) >= len(texts) {
				return backoff.Permanent(fmt.Errorf("response index %d out of range", data.Index))
			}
			embeddings[data.Index] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = e.maxElapsed

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return embeddings, err
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
