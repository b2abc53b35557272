// Package retrieval provides nearest-neighbor search over product
// embeddings, either from an in-process flat index loaded at startup or
// from the record store's embedding table.
package retrieval

import "context"

// Match is one search hit: a stable product identifier and its distance to
// the query vector. Smaller distance means closer.
type Match struct {
	ID       string
	Distance float32
}

// Searcher performs top-K nearest-neighbor search for a query vector.
// Results are ordered ascending by distance.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)
}
