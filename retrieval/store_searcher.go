package retrieval

import (
	"context"

	"github.com/pkg/errors"

	"github.com/qiwen/shopguide/store"
)

// StoreSearcher performs nearest-neighbor search inside the record store
// (pgvector). Available on the postgres driver only.
type StoreSearcher struct {
	store *store.Store
}

// NewStoreSearcher creates a Searcher backed by the record store's product
// embedding table.
func NewStoreSearcher(s *store.Store) *StoreSearcher {
	return &StoreSearcher{store: s}
}

func (s *StoreSearcher) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	hits, err := s.store.SearchProductEmbeddings(ctx, vector, k)
	if err != nil {
		return nil, errors.Wrap(err, "store vector search failed")
	}

	matches := make([]Match, len(hits))
	for i, hit := range hits {
		matches[i] = Match{ID: hit.ID, Distance: hit.Distance}
	}
	return matches, nil
}
