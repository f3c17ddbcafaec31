package indexer

import (
	"errors"
	"fmt"
)

var (
	ErrIndexBuild   = errors.New("index build failed")
	ErrProvisioning = errors.New("collection provisioning failed")
	ErrUpsert       = errors.New("upsert failed")
)

// PartialLoadError reports a run whose collection was recreated but whose
// points were not all stored. There is no rollback: the collection is left
// with Loaded of Total points and should be re-indexed.
type PartialLoadError struct {
	Collection string
	Loaded     int
	Total      int
	Err        error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("collection %s provisioned but not loaded (%d/%d points stored): %v",
		e.Collection, e.Loaded, e.Total, e.Err)
}

func (e *PartialLoadError) Unwrap() error { return e.Err }
