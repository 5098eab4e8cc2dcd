package kg

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKP is returned when a knowledge-point id is not present in
	// the loaded catalog.
	ErrUnknownKP = errors.New("kg: unknown knowledge point")

	// ErrUnknownQuestion is returned when a question id is not present in
	// the loaded catalog.
	ErrUnknownQuestion = errors.New("kg: unknown question")
)

// CorruptCatalogError is returned at load time when the source rows for
// embeddings, edges, questions, or names cannot be assembled into a
// consistent catalog (e.g. ragged embedding rows, a question referencing
// no knowledge points, a duplicate qid).
type CorruptCatalogError struct {
	Reason string
}

func (e *CorruptCatalogError) Error() string {
	return fmt.Sprintf("kg: corrupt catalog: %s", e.Reason)
}

// DimensionMismatchError is returned when a vector's width does not match
// the catalog's embedding dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("kg: dimension mismatch: want %d, got %d", e.Want, e.Got)
}
