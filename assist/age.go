package assist

import (
	"time"

	"github.com/pkg/errors"
)

// dateLayout is the YYYYMMDD format used by the member table and prompts.
const dateLayout = "20060102"

// DeriveAge computes full years between a YYYYMMDD birthdate and now,
// subtracting one when this year's birthday has not yet arrived.
func DeriveAge(birthday string, now time.Time) (int, error) {
	birth, err := time.Parse(dateLayout, birthday)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid birthday %q", birthday)
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, nil
}
