package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseDistance(t *testing.T) {
	tests := map[string]Distance{
		"cosine":    DistanceCosine,
		"Cosine":    DistanceCosine,
		"euclid":    DistanceEuclid,
		"Euclidean": DistanceEuclid,
		" dot ":     DistanceDot,
	}
	for input, want := range tests {
		got, err := ParseDistance(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseDistance("manhattan")
	assert.ErrorIs(t, err, ErrInvalidDistance)
}

func TestDistanceQdrant(t *testing.T) {
	d, err := DistanceCosine.qdrant()
	require.NoError(t, err)
	assert.Equal(t, qdrant.Distance_Cosine, d)

	_, err = Distance("hamming").qdrant()
	assert.ErrorIs(t, err, ErrInvalidDistance)
}

func TestToPointStructs(t *testing.T) {
	points := []Point{
		{
			ID:     0,
			Vector: []float32{0.1, 0.2, 0.3},
			Payload: Payload{
				Category: "Billing",
				Question: "Apa itu margin?",
				Answer:   "Margin adalah...",
			},
		},
		{ID: 1, Vector: []float32{0.4, 0.5, 0.6}, Payload: Payload{Category: "Akun", Question: "q", Answer: "a"}},
	}

	structs := toPointStructs(points)
	require.Len(t, structs, 2)

	first := structs[0]
	assert.Equal(t, uint64(0), first.GetId().GetNum())
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, first.GetVectors().GetVector().GetDense().GetData())
	assert.Equal(t, "Billing", first.GetPayload()[FieldCategory].GetStringValue())
	assert.Equal(t, "Apa itu margin?", first.GetPayload()[FieldQuestion].GetStringValue())
	assert.Equal(t, "Margin adalah...", first.GetPayload()[FieldAnswer].GetStringValue())

	assert.Equal(t, uint64(1), structs[1].GetId().GetNum())
}

func TestPayloadFromValues(t *testing.T) {
	p := Payload{Category: "Billing", Question: "Apa itu margin?", Answer: "Margin adalah..."}
	assert.Equal(t, p, payloadFromValues(p.valueMap()))

	assert.Equal(t, Payload{}, payloadFromValues(nil))
}

func TestVectorData(t *testing.T) {
	dense := &qdrant.VectorOutput{
		Vector: &qdrant.VectorOutput_Dense{Dense: &qdrant.DenseVector{Data: []float32{0.1, 0.2}}},
	}
	assert.Equal(t, []float32{0.1, 0.2}, vectorData(dense))

	legacy := &qdrant.VectorOutput{Data: []float32{0.3}}
	assert.Equal(t, []float32{0.3}, vectorData(legacy))

	assert.Nil(t, vectorData(nil))
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("connection reset"), false},
		{"invalid argument", status.Error(codes.InvalidArgument, "wrong input vector size"), true},
		{"wrapped invalid argument", fmt.Errorf("upsert: %w", status.Error(codes.InvalidArgument, "bad")), true},
		{"not found", status.Error(codes.NotFound, "collection missing"), true},
		{"unavailable", status.Error(codes.Unavailable, "try again"), false},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}
