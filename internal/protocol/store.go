package protocol

import "context"

// Store is a read-only source of protocol records.
type Store interface {
	// LoadAll returns all records in source insertion order.
	LoadAll(ctx context.Context) ([]*Record, error)
	Close() error
}

// MemoryStore serves a fixed set of records, used for tests and embedding.
type MemoryStore struct {
	records []*Record
	// Err, when set, is returned by LoadAll wrapped with ErrStoreUnavailable.
	Err error
}

func NewMemoryStore(records ...*Record) *MemoryStore {
	return &MemoryStore{
		records: records,
	}
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]*Record, error) {
	if s.Err != nil {
		return nil, storeUnavailable(s.Err)
	}
	records := make([]*Record, len(s.records))
	copy(records, s.records)
	return records, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
