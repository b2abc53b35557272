package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrVectorSearchUnsupported is returned by drivers without in-database
// vector search. Callers fall back to the in-process index.
var ErrVectorSearchUnsupported = errors.New("vector search not supported by this driver")

// Driver is an interface for record store access.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	GetMemberByCode(ctx context.Context, code string) (*Member, error)
	GetShopCityByCode(ctx context.Context, code string) (string, error)
	SearchProductEmbeddings(ctx context.Context, vector []float32, limit int) ([]*ProductMatch, error)
}
