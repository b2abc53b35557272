package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/store"
)

// SQLite is supported for development and single-user deployments only.
// In-database vector search is not available; similarity search runs
// against the in-process flat index instead.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its database driver name and a
// driver-specific data source name.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// WAL journal mode prevents reader/writer locking for local use.
	// With the modernc.org/sqlite driver each pragma must be prefixed
	// with `_pragma=`.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// A single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) GetMemberByCode(ctx context.Context, code string) (*store.Member, error) {
	stmt := `
		SELECT real_name, sex, birthday
		FROM ads_members_information
		WHERE mem_code = ?
	`

	member := &store.Member{}
	err := d.db.QueryRowContext(ctx, stmt, code).Scan(&member.Name, &member.Sex, &member.Birthday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query member")
	}

	return member, nil
}

func (d *DB) GetShopCityByCode(ctx context.Context, code string) (string, error) {
	stmt := `
		SELECT DISTINCT city
		FROM new_shop_channel_expanding
		WHERE shop_code = ?
	`

	var city string
	err := d.db.QueryRowContext(ctx, stmt, code).Scan(&city)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, "failed to query shop city")
	}

	return city, nil
}

// SearchProductEmbeddings is not supported on SQLite.
func (d *DB) SearchProductEmbeddings(_ context.Context, _ []float32, _ int) ([]*store.ProductMatch, error) {
	return nil, store.ErrVectorSearchUnsupported
}
