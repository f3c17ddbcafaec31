package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultRemoteTimeout bounds each request to the embedding endpoint.
	DefaultRemoteTimeout = 30 * time.Second

	// DefaultRemoteConcurrency is the number of in-flight requests per Embed call.
	DefaultRemoteConcurrency = 4

	// maxErrorBody caps how much of a failed response is kept for diagnosis.
	maxErrorBody = 1024
)

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("embedding endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// RemoteOptions configures a Remote backend.
type RemoteOptions struct {
	BaseURL           string
	Model             string
	Timeout           time.Duration // per request; 0 means DefaultRemoteTimeout
	Concurrency       int           // 0 means DefaultRemoteConcurrency
	RequestsPerSecond float64       // 0 disables rate limiting
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Remote calls an Ollama-compatible POST {base}/api/embeddings endpoint, one request per text.
// Requests fan out with bounded concurrency; the first failure cancels the rest and
// no partial result is returned. Failed requests are not retried.
type Remote struct {
	baseURL     string
	model       string
	timeout     time.Duration
	concurrency int
	limiter     *rate.Limiter
	client      *http.Client
	logger      *slog.Logger
}

// NewRemote creates a remote embedding backend.
func NewRemote(opts RemoteOptions) *Remote {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRemoteTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultRemoteConcurrency
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Concurrency)
	}

	return &Remote{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		limiter:     limiter,
		client:      opts.HTTPClient,
		logger:      opts.Logger,
	}
}

// Model returns the remote model name.
func (r *Remote) Model() string { return r.model }

type remoteRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// remoteResponse accepts both the Ollama shape ({"embedding": [...]}) and the
// OpenAI-style shape ({"data": [{"embedding": [...]}]}).
type remoteResponse struct {
	Embedding []float64 `json:"embedding"`
	Data      []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (r remoteResponse) vector() []float64 {
	if len(r.Embedding) > 0 {
		return r.Embedding
	}
	if len(r.Data) > 0 {
		return r.Data[0].Embedding
	}
	return nil
}

// Embed generates one vector per text, preserving input order.
func (r *Remote) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := r.limiter.Wait(gctx); err != nil {
				return fmt.Errorf("%w: text %d: %w", ErrEmbedding, i, err)
			}
			vec, err := r.embedOne(gctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("Remote embedding failed", "model", r.model, "texts", len(texts), "error", err)
		return nil, err
	}

	if err := validateVectors(out, len(texts)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Remote) embedOne(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{Model: r.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		})
	}

	var decoded remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrEmbedding, err)
	}

	vec := decoded.vector()
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: response has no embedding field", ErrEmbedding)
	}
	return toFloat32(vec), nil
}
