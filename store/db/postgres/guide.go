package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/qiwen/shopguide/store"
)

func (d *DB) GetMemberByCode(ctx context.Context, code string) (*store.Member, error) {
	stmt := `
		SELECT real_name, sex, birthday
		FROM ads_members_information
		WHERE mem_code = $1
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
		WHERE shop_code = $1
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
