package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/qiwen/shopguide/store"
)

// SearchProductEmbeddings returns the nearest product embeddings to the
// query vector, ascending by L2 distance.
func (d *DB) SearchProductEmbeddings(ctx context.Context, vector []float32, limit int) ([]*store.ProductMatch, error) {
	stmt := `
		SELECT product_id, embedding <-> $1 AS distance
		FROM product_embedding
		ORDER BY distance ASC
		LIMIT $2
	`

	rows, err := d.db.QueryContext(ctx, stmt, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search product embeddings")
	}
	defer rows.Close()

	list := []*store.ProductMatch{}
	for rows.Next() {
		match := &store.ProductMatch{}
		if err := rows.Scan(&match.ID, &match.Distance); err != nil {
			return nil, errors.Wrap(err, "failed to scan product match")
		}
		list = append(list, match)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate product matches")
	}

	return list, nil
}
