package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("protocol not found")
	ErrStoreUnavailable = errors.New("protocol store unavailable")
)

// Resolve scans records in store order and returns the first one whose 16
// attributes equal the profile's. There is no partial or closest match.
func Resolve(p Profile, records []*Record) (*Record, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return nil, incompleteProfileErr(missing)
	}

	key := p.Key()
	for _, r := range records {
		if r.Key() == key {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func incompleteProfileErr(missing []string) error {
	return fmt.Errorf("%w: incomplete profile, missing [%s]", ErrNotFound, strings.Join(missing, ", "))
}
