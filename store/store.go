package store

import (
	"context"

	"github.com/qiwen/shopguide/internal/profile"
)

// Store provides read access to the member and shop record tables.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// GetMemberByCode returns the member record for a membership code, or nil
// when no member matches. Absence is not an error.
func (s *Store) GetMemberByCode(ctx context.Context, code string) (*Member, error) {
	return s.driver.GetMemberByCode(ctx, code)
}

// GetShopCityByCode returns the distinct city code of a shop, or "" when the
// shop is unknown.
func (s *Store) GetShopCityByCode(ctx context.Context, code string) (string, error) {
	return s.driver.GetShopCityByCode(ctx, code)
}

// SearchProductEmbeddings performs a nearest-neighbor search over the
// product embedding table. Only supported by drivers with vector search
// capability; others return ErrVectorSearchUnsupported.
func (s *Store) SearchProductEmbeddings(ctx context.Context, vector []float32, limit int) ([]*ProductMatch, error) {
	return s.driver.SearchProductEmbeddings(ctx, vector, limit)
}

// Ping verifies the record store connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.GetDB().PingContext(ctx)
}
