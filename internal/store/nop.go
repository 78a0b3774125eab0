package store

import "github.com/rmehta3/jobdigest/internal/model"

// NopStore is a no-op store used in check mode. Every posting looks new and
// nothing is persisted.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) InsertIfNew(p model.Posting) (int64, bool, error) { return 0, true, nil }

func (s *NopStore) ListUnsent() ([]model.Record, error) { return nil, nil }

func (s *NopStore) MarkSent(ids []int64) error { return nil }

func (s *NopStore) PurgeOlderThan(days int) (int64, error) { return 0, nil }
