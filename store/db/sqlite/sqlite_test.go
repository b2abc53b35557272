package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	db := driver.GetDB()
	_, err = db.Exec(`
		CREATE TABLE ads_members_information (
			mem_code TEXT PRIMARY KEY,
			real_name TEXT NOT NULL,
			sex TEXT NOT NULL,
			birthday TEXT NOT NULL
		);
		CREATE TABLE new_shop_channel_expanding (
			shop_code TEXT NOT NULL,
			city TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO ads_members_information VALUES ('13800000001', '张三', '男', '19900520')`)
	require.NoError(t, err)
	// Duplicate city rows collapse through DISTINCT.
	_, err = db.Exec(`
		INSERT INTO new_shop_channel_expanding VALUES ('SH001', '440300XYZ');
		INSERT INTO new_shop_channel_expanding VALUES ('SH001', '440300XYZ');
	`)
	require.NoError(t, err)

	return driver
}

func TestGetMemberByCode(t *testing.T) {
	driver := newTestDB(t)

	member, err := driver.GetMemberByCode(context.Background(), "13800000001")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "张三", member.Name)
	assert.Equal(t, "男", member.Sex)
	assert.Equal(t, "19900520", member.Birthday)
}

func TestGetMemberByCodeNotFound(t *testing.T) {
	driver := newTestDB(t)

	member, err := driver.GetMemberByCode(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestGetShopCityByCode(t *testing.T) {
	driver := newTestDB(t)

	city, err := driver.GetShopCityByCode(context.Background(), "SH001")
	require.NoError(t, err)
	assert.Equal(t, "440300XYZ", city)
}

func TestGetShopCityByCodeNotFound(t *testing.T) {
	driver := newTestDB(t)

	city, err := driver.GetShopCityByCode(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", city)
}

func TestSearchProductEmbeddingsUnsupported(t *testing.T) {
	driver := newTestDB(t)

	_, err := driver.SearchProductEmbeddings(context.Background(), []float32{0.1}, 10)
	assert.ErrorIs(t, err, store.ErrVectorSearchUnsupported)
}
