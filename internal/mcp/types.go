// Package mcp exposes the FAQ embedding service as Model Context Protocol tools.
package mcp

// EmbedTextsInput defines the input parameters for the embed_texts tool.
type EmbedTextsInput struct {
	// Texts are embedded in order.
	Texts []string `json:"texts" jsonschema:"texts to embed with the same model used for the FAQ index"`
}

// EmbedTextsOutput contains one vector per input text.
type EmbedTextsOutput struct {
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

// CollectionInfoInput defines the input parameters for the collection_info tool.
type CollectionInfoInput struct {
	// Collection defaults to the configured FAQ collection.
	Collection string `json:"collection,omitempty" jsonschema:"collection name, defaults to the configured FAQ collection"`
	// SampleSize is the number of points to return alongside the statistics.
	SampleSize int `json:"sample_size,omitempty" jsonschema:"number of sample points to include (at most 20)"`
}

// CollectionInfoOutput describes the indexed collection.
type CollectionInfoOutput struct {
	Name        string        `json:"name"`
	Found       bool          `json:"found"`
	Status      string        `json:"status,omitempty"`
	PointsCount uint64        `json:"points_count"`
	Dimension   uint64        `json:"dimension,omitempty"`
	Distance    string        `json:"distance,omitempty"`
	Samples     []SamplePoint `json:"samples,omitempty"`
}

// SamplePoint is a stored FAQ entry without its vector.
type SamplePoint struct {
	ID       uint64 `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
