// Package storage provisions and loads the FAQ collection in Qdrant.
//
// Points carry English payload keys (category, question, answer). Consumers
// written against the kategori/pertanyaan/jawaban keys of the source file must
// be updated to read these names.
package storage

import (
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Payload field names stored with every point.
const (
	FieldCategory = "category"
	FieldQuestion = "question"
	FieldAnswer   = "answer"
)

// Distance is a vector similarity metric.
type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceEuclid Distance = "euclid"
	DistanceDot    Distance = "dot"
)

// ParseDistance maps a metric name to a Distance. Matching is case-insensitive
// and "euclidean" is accepted as an alias for euclid.
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine":
		return DistanceCosine, nil
	case "euclid", "euclidean":
		return DistanceEuclid, nil
	case "dot":
		return DistanceDot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDistance, s)
}

func (d Distance) qdrant() (qdrant.Distance, error) {
	switch d {
	case DistanceCosine:
		return qdrant.Distance_Cosine, nil
	case DistanceEuclid:
		return qdrant.Distance_Euclid, nil
	case DistanceDot:
		return qdrant.Distance_Dot, nil
	}
	return qdrant.Distance_UnknownDistance, fmt.Errorf("%w: %q", ErrInvalidDistance, string(d))
}

// CollectionSpec describes the collection an indexing run writes to.
type CollectionSpec struct {
	Name      string
	Dimension int
	Distance  Distance
}

// Payload is the FAQ content carried by a point. Only the question is embedded.
type Payload struct {
	Category string
	Question string
	Answer   string
}

func (p Payload) valueMap() map[string]*qdrant.Value {
	return qdrant.NewValueMap(map[string]any{
		FieldCategory: p.Category,
		FieldQuestion: p.Question,
		FieldAnswer:   p.Answer,
	})
}

func payloadFromValues(values map[string]*qdrant.Value) Payload {
	return Payload{
		Category: values[FieldCategory].GetStringValue(),
		Question: values[FieldQuestion].GetStringValue(),
		Answer:   values[FieldAnswer].GetStringValue(),
	}
}

// vectorData returns the dense vector of v, falling back to the legacy
// data field used by servers that do not populate the dense variant.
func vectorData(v *qdrant.VectorOutput) []float32 {
	if dense := v.GetDense(); dense != nil {
		return dense.GetData()
	}
	return v.GetData()
}

// Point is one indexed FAQ entry. ID is the record's position in the corpus.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload Payload
}

// CollectionInfo contains collection statistics.
type CollectionInfo struct {
	Name        string
	Status      string
	PointsCount uint64
	Dimension   uint64
	Distance    string
}
