package storage

import "errors"

var (
	ErrQdrantUnreachable  = errors.New("qdrant server unreachable")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInvalidDistance    = errors.New("invalid distance metric")
	ErrInvalidDimension   = errors.New("invalid vector dimension")
)
