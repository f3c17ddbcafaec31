//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStorage connects to a local Qdrant and creates a uniquely named collection.
// Skips test if Qdrant is not running.
func setupTestStorage(t *testing.T, dim int) (*QdrantStorage, string) {
	storage, err := NewQdrantStorage(Config{Host: "localhost", Port: 6334})
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	name := "faq_test_" + uuid.NewString()
	err = storage.RecreateCollection(context.Background(), CollectionSpec{
		Name:      name,
		Dimension: dim,
		Distance:  DistanceCosine,
	})
	require.NoError(t, err, "Failed to create collection")
	t.Cleanup(func() { storage.client.DeleteCollection(context.Background(), name) })

	return storage, name
}

func TestUpsertScrollRoundTrip(t *testing.T) {
	storage, name := setupTestStorage(t, 3)
	ctx := context.Background()

	points := []Point{
		{ID: 0, Vector: []float32{1, 0, 0}, Payload: Payload{Category: "Billing", Question: "Apa itu margin?", Answer: "Margin adalah..."}},
		{ID: 1, Vector: []float32{0, 1, 0}, Payload: Payload{Category: "Akun", Question: "Lupa password?", Answer: "Klik reset."}},
	}

	stored, err := storage.Upsert(ctx, name, points)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	got, err := storage.Scroll(ctx, name, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(0), got[0].ID)
	assert.Equal(t, points[0].Payload, got[0].Payload)
	assert.Equal(t, points[1].Payload, got[1].Payload)
	assert.Len(t, got[0].Vector, 3)

	info, err := storage.GetCollectionInfo(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.PointsCount)
	assert.Equal(t, uint64(3), info.Dimension)
	assert.Equal(t, "cosine", info.Distance)
}

func TestRecreateCollectionDiscardsPoints(t *testing.T) {
	storage, name := setupTestStorage(t, 2)
	ctx := context.Background()

	_, err := storage.Upsert(ctx, name, []Point{{ID: 7, Vector: []float32{1, 1}, Payload: Payload{Category: "c", Question: "q", Answer: "a"}}})
	require.NoError(t, err)

	err = storage.RecreateCollection(ctx, CollectionSpec{Name: name, Dimension: 4, Distance: DistanceDot})
	require.NoError(t, err)

	info, err := storage.GetCollectionInfo(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), info.PointsCount)
	assert.Equal(t, uint64(4), info.Dimension)
	assert.Equal(t, "dot", info.Distance)
}

func TestRecreateCollectionRejectsInvalidParams(t *testing.T) {
	storage, name := setupTestStorage(t, 2)
	ctx := context.Background()

	err := storage.RecreateCollection(ctx, CollectionSpec{Name: name, Dimension: 0, Distance: DistanceCosine})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	err = storage.RecreateCollection(ctx, CollectionSpec{Name: name, Dimension: 2, Distance: "manhattan"})
	assert.ErrorIs(t, err, ErrInvalidDistance)
}

func TestGetCollectionInfoMissing(t *testing.T) {
	storage, _ := setupTestStorage(t, 2)

	_, err := storage.GetCollectionInfo(context.Background(), "missing_"+uuid.NewString())
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestUpsertWrongDimension(t *testing.T) {
	storage, name := setupTestStorage(t, 3)

	// Rejected writes are not retried
	start := time.Now()
	stored, err := storage.Upsert(context.Background(), name, []Point{{ID: 0, Vector: []float32{1}, Payload: Payload{Category: "c", Question: "q", Answer: "a"}}})
	assert.Error(t, err)
	assert.Equal(t, 0, stored)
	assert.Less(t, time.Since(start), 5*time.Second)
}
