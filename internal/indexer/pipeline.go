package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bull/faq-semantic-index/internal/embedding"
	"github.com/bull/faq-semantic-index/internal/faq"
	"github.com/bull/faq-semantic-index/internal/storage"
)

// DefaultBatchSize is the number of questions sent to the backend per Embed call.
const DefaultBatchSize = 64

// Store is the subset of the vector store the pipeline mutates.
type Store interface {
	RecreateCollection(ctx context.Context, spec storage.CollectionSpec) error
	Upsert(ctx context.Context, collection string, points []storage.Point) (int, error)
}

// Options configures a Pipeline.
type Options struct {
	Collection string
	Distance   storage.Distance // defaults to cosine
	BatchSize  int              // defaults to DefaultBatchSize
	// OnProgress, if set, is called after each embedded batch.
	OnProgress func(done, total int)
}

// Report contains statistics about a successful indexing run.
type Report struct {
	RunID      string
	Collection string
	PointCount int
	Dimension  int
	Distance   storage.Distance
	Skipped    int
	Duration   time.Duration
}

// Pipeline embeds a corpus and loads it into a freshly recreated collection.
// Runs against the same collection must not overlap.
type Pipeline struct {
	backend embedding.Backend
	store   Store
	opts    Options
	logger  *slog.Logger
}

// NewPipeline creates a new indexing pipeline with the given components.
func NewPipeline(backend embedding.Backend, store Store, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Distance == "" {
		opts.Distance = storage.DistanceCosine
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		backend: backend,
		store:   store,
		opts:    opts,
		logger:  logger,
	}
}

// IndexAll flattens the grouped FAQ data and indexes the resulting corpus.
// Records with empty fields are skipped and counted in the report.
func (p *Pipeline) IndexAll(ctx context.Context, groups []faq.Group) (*Report, error) {
	corpus, skipped := faq.Flatten(groups)
	if skipped > 0 {
		p.logger.Warn("Skipped incomplete FAQ records", "skipped", skipped)
	}

	report, err := p.Run(ctx, corpus)
	if err != nil {
		return nil, err
	}
	report.Skipped = skipped
	return report, nil
}

// Run embeds every question in corpus, recreates the collection sized to the
// embedding dimension and upserts one point per record with id = corpus position.
//
// Nothing in the store is touched until all vectors are produced and validated.
// A failure after the collection was recreated is reported as *PartialLoadError.
func (p *Pipeline) Run(ctx context.Context, corpus faq.Corpus) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "collection", p.opts.Collection)

	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: corpus is empty", ErrIndexBuild)
	}
	logger.Info("Starting indexing", "records", len(corpus), "model", p.backend.Model())

	// 1-3. Embed questions and validate before any store mutation
	vectors, dim, err := p.embedAll(ctx, corpus.Questions())
	if err != nil {
		return nil, err
	}
	logger.Info("Embedded questions", "vectors", len(vectors), "dimension", dim)

	// 4. Provision
	spec := storage.CollectionSpec{
		Name:      p.opts.Collection,
		Dimension: dim,
		Distance:  p.opts.Distance,
	}
	if err := p.store.RecreateCollection(ctx, spec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	logger.Info("Collection recreated", "dimension", dim, "distance", p.opts.Distance)

	// 5. Build points
	points := BuildPoints(corpus, vectors)

	// 6. Load
	loaded, err := p.store.Upsert(ctx, p.opts.Collection, points)
	if err != nil {
		logger.Error("Upsert failed after collection was recreated",
			"loaded", loaded, "total", len(points), "error", err)
		return nil, &PartialLoadError{
			Collection: p.opts.Collection,
			Loaded:     loaded,
			Total:      len(points),
			Err:        fmt.Errorf("%w: %w", ErrUpsert, err),
		}
	}

	report := &Report{
		RunID:      runID,
		Collection: p.opts.Collection,
		PointCount: loaded,
		Dimension:  dim,
		Distance:   p.opts.Distance,
		Duration:   time.Since(start),
	}
	logger.Info("Indexing complete",
		"points", report.PointCount,
		"duration", report.Duration,
	)
	return report, nil
}

// embedAll embeds texts in batches and checks that every vector shares the
// dimension of the first one.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, int, error) {
	vectors := make([][]float32, 0, len(texts))
	dim := 0

	for i := 0; i < len(texts); i += p.opts.BatchSize {
		end := min(i+p.opts.BatchSize, len(texts))

		batch, err := p.backend.Embed(ctx, texts[i:end])
		if err != nil {
			return nil, 0, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(batch) != end-i {
			return nil, 0, fmt.Errorf("%w: batch %d-%d returned %d vectors", ErrIndexBuild, i, end, len(batch))
		}

		for j, vec := range batch {
			if dim == 0 {
				dim = len(vec)
				if dim == 0 {
					return nil, 0, fmt.Errorf("%w: first vector is empty", ErrIndexBuild)
				}
			}
			if len(vec) != dim {
				return nil, 0, fmt.Errorf("%w: %w: vector %d has %d dimensions, expected %d",
					ErrIndexBuild, embedding.ErrDimensionMismatch, i+j, len(vec), dim)
			}
		}
		vectors = append(vectors, batch...)

		if p.opts.OnProgress != nil {
			p.opts.OnProgress(end, len(texts))
		}
	}

	if len(vectors) != len(texts) {
		return nil, 0, fmt.Errorf("%w: got %d vectors for %d records", ErrIndexBuild, len(vectors), len(texts))
	}
	return vectors, dim, nil
}

// BuildPoints pairs each record with its vector. Point ids are corpus positions.
func BuildPoints(corpus faq.Corpus, vectors [][]float32) []storage.Point {
	points := make([]storage.Point, len(corpus))
	for i, rec := range corpus {
		points[i] = storage.Point{
			ID:     uint64(i),
			Vector: vectors[i],
			Payload: storage.Payload{
				Category: rec.Category,
				Question: rec.Question,
				Answer:   rec.Answer,
			},
		}
	}
	return points
}
