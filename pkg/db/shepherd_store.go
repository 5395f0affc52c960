package db

import (
	"context"
	"encoding/json"

	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// shepherdStore adapts a DevBoxStore to the narrower shepherd.Store shape
// the device registry depends on. The only difference is
// the blob type: json.RawMessage here, plain []byte there.
type shepherdStore struct {
	inner DevBoxStore
}

// ShepherdStore returns a shepherd.Store backed by this database's
// zb_devices table, for use as pkg/shepherd's Store collaborator.
func (db *DB) ShepherdStore() shepherd.Store {
	return &shepherdStore{inner: db.DevBox()}
}

func (s *shepherdStore) Add(ctx context.Context, data []byte) (int64, error) {
	return s.inner.Add(ctx, json.RawMessage(data))
}

func (s *shepherdStore) Set(ctx context.Context, id int64, data []byte) error {
	return s.inner.Set(ctx, id, json.RawMessage(data))
}

func (s *shepherdStore) Get(ctx context.Context, id int64) ([]byte, error) {
	raw, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *shepherdStore) Remove(ctx context.Context, id int64) error {
	return s.inner.Remove(ctx, id)
}

func (s *shepherdStore) Sync(ctx context.Context, id int64, data []byte) error {
	return s.inner.Sync(ctx, id, json.RawMessage(data))
}

func (s *shepherdStore) ExportAllIDs(ctx context.Context) ([]int64, error) {
	return s.inner.ExportAllIDs(ctx)
}

func (s *shepherdStore) ExportAllObjs(ctx context.Context) ([][]byte, error) {
	objs, err := s.inner.ExportAllObjs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(objs))
	for i, o := range objs {
		out[i] = []byte(o)
	}
	return out, nil
}

func (s *shepherdStore) IsEmpty(ctx context.Context) (bool, error) {
	return s.inner.IsEmpty(ctx)
}
