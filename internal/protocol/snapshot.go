package protocol

import "time"

// Snapshot is an immutable, indexed view of the loaded protocol records.
type Snapshot struct {
	records    []*Record
	index      map[Key]*Record
	duplicates map[Key]int
	loadedAt   time.Time
}

// NewSnapshot indexes records by their 16-tuple. For duplicate tuples the
// earliest record wins, same as a linear Resolve.
func NewSnapshot(records []*Record, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		records:    records,
		index:      make(map[Key]*Record, len(records)),
		duplicates: make(map[Key]int),
		loadedAt:   loadedAt,
	}
	for _, r := range records {
		k := r.Key()
		if _, exists := s.index[k]; exists {
			s.duplicates[k]++
			continue
		}
		s.index[k] = r
	}
	return s
}

// Lookup resolves a profile through the index.
func (s *Snapshot) Lookup(p Profile) (*Record, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return nil, incompleteProfileErr(missing)
	}
	r, ok := s.index[p.Key()]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Records returns the records in store order. Callers must not modify them.
func (s *Snapshot) Records() []*Record {
	return s.records
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// Duplicates returns, per duplicated 16-tuple, how many later rows are shadowed by the first one.
func (s *Snapshot) Duplicates() map[Key]int {
	dups := make(map[Key]int, len(s.duplicates))
	for k, n := range s.duplicates {
		dups[k] = n
	}
	return dups
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
