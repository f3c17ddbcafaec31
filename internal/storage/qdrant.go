package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultUpsertBatchSize is the number of points sent per upsert request.
const DefaultUpsertBatchSize = 100

// Config holds Qdrant connection settings.
type Config struct {
	Host   string
	Port   int // gRPC port, 6334 by default
	APIKey string
	UseTLS bool
}

// QdrantStorage wraps the Qdrant client with connection management and health checks.
type QdrantStorage struct {
	client          *qdrant.Client
	upsertBatchSize int
	retryMaxElapsed time.Duration
}

// NewQdrantStorage creates a new Qdrant client with health validation.
// It performs health check with retry on startup and fails fast if Qdrant is unreachable.
func NewQdrantStorage(cfg Config) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	storage := &QdrantStorage{
		client:          client,
		upsertBatchSize: DefaultUpsertBatchSize,
		retryMaxElapsed: 30 * time.Second,
	}

	if err := storage.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return storage, nil
}

func (s *QdrantStorage) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = s.retryMaxElapsed
	return b
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(s.newBackOff(), ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if result == nil || result.GetTitle() == "" {
		return fmt.Errorf("health check returned invalid response")
	}

	return nil
}

// RecreateCollection drops the named collection if it exists and creates it again
// with a single dense vector of spec.Dimension and spec.Distance, plus a keyword
// index on the category field. Any previous points are discarded.
//
// Two runs recreating the same collection concurrently race; callers must serialise them.
func (s *QdrantStorage) RecreateCollection(ctx context.Context, spec CollectionSpec) error {
	if spec.Dimension <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, spec.Dimension)
	}
	distance, err := spec.Distance.qdrant()
	if err != nil {
		return err
	}

	exists, err := s.client.CollectionExists(ctx, spec.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", spec.Name, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, spec.Name); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", spec.Name, err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(spec.Dimension),
			Distance: distance,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
	}

	// The downstream FAQ search filters by category.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: spec.Name,
		FieldName:      FieldCategory,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field %s: %w", FieldCategory, err)
	}

	return nil
}

// Upsert stores points in batches of DefaultUpsertBatchSize, waiting for each batch
// to be applied. It returns the number of points stored before any failure.
func (s *QdrantStorage) Upsert(ctx context.Context, collection string, points []Point) (int, error) {
	stored := 0
	for i := 0; i < len(points); i += s.upsertBatchSize {
		end := min(i+s.upsertBatchSize, len(points))

		if err := s.upsertWithRetry(ctx, collection, toPointStructs(points[i:end])); err != nil {
			return stored, fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
		stored = end
	}
	return stored, nil
}

// upsertWithRetry performs upsert operation with exponential backoff retry.
func (s *QdrantStorage) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx))
}

// isPermanent reports whether err is a gRPC status that retrying cannot fix,
// such as a vector of the wrong dimension.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists, codes.PermissionDenied,
		codes.Unauthenticated, codes.FailedPrecondition, codes.OutOfRange, codes.Unimplemented:
		return true
	}
	return false
}

func toPointStructs(points []Point) []*qdrant.PointStruct {
	out := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		out[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: p.Payload.valueMap(),
		}
	}
	return out
}

// GetCollectionInfo retrieves collection statistics including total points count.
func (s *QdrantStorage) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	return &CollectionInfo{
		Name:        collection,
		Status:      strings.ToLower(info.GetStatus().String()),
		PointsCount: info.GetPointsCount(),
		Dimension:   params.GetSize(),
		Distance:    strings.ToLower(params.GetDistance().String()),
	}, nil
}

// Scroll returns up to limit points in id order, with payloads and vectors.
func (s *QdrantStorage) Scroll(ctx context.Context, collection string, limit int) ([]Point, error) {
	if limit <= 0 {
		return nil, nil
	}

	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll collection %s: %w", collection, err)
	}

	points := make([]Point, 0, len(results))
	for _, result := range results {
		points = append(points, Point{
			ID:      result.GetId().GetNum(),
			Vector:  vectorData(result.GetVectors().GetVector()),
			Payload: payloadFromValues(result.GetPayload()),
		})
	}
	return points, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
