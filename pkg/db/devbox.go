package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDevBoxRecordNotFound indicates no record exists for the given registry id.
var ErrDevBoxRecordNotFound = errors.New("devbox: record not found")

// DevBoxStore is the persistent object store the Shepherd's device registry
// is built on: a plain indexed collection keyed by a registry id the store
// assigns on first Add. It has no notion of what a "device" is; it just
// stores and retrieves opaque JSON blobs by id.
type DevBoxStore interface {
	Add(ctx context.Context, data json.RawMessage) (int64, error)
	Set(ctx context.Context, id int64, data json.RawMessage) error
	Get(ctx context.Context, id int64) (json.RawMessage, error)
	Find(ctx context.Context, pred func(json.RawMessage) bool) (int64, json.RawMessage, bool, error)
	Remove(ctx context.Context, id int64) error
	Sync(ctx context.Context, id int64, data json.RawMessage) error
	ExportAllIDs(ctx context.Context) ([]int64, error)
	ExportAllObjs(ctx context.Context) ([]json.RawMessage, error)
	IsEmpty(ctx context.Context) (bool, error)
}

// DevBox returns a DevBoxStore for this database.
func (db *DB) DevBox() DevBoxStore {
	return &devBoxStore{db: db}
}

type devBoxStore struct {
	db *DB
}

func (s *devBoxStore) Add(ctx context.Context, data json.RawMessage) (int64, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO zb_devices (data) VALUES (?)`, string(data))
	if err != nil {
		return 0, fmt.Errorf("devbox add: %w", err)
	}
	return result.LastInsertId()
}

func (s *devBoxStore) Set(ctx context.Context, id int64, data json.RawMessage) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE zb_devices SET data = ?, updated_at = datetime('now') WHERE id = ?
	`, string(data), id)
	if err != nil {
		return fmt.Errorf("devbox set: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// set() on a recovered-but-not-yet-persisted id inserts at that id.
		_, err := s.db.ExecContext(ctx, `INSERT INTO zb_devices (id, data) VALUES (?, ?)`, id, string(data))
		if err != nil {
			return fmt.Errorf("devbox set (insert): %w", err)
		}
	}
	return nil
}

func (s *devBoxStore) Get(ctx context.Context, id int64) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM zb_devices WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDevBoxRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (s *devBoxStore) Find(ctx context.Context, pred func(json.RawMessage) bool) (int64, json.RawMessage, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM zb_devices`)
	if err != nil {
		return 0, nil, false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return 0, nil, false, err
		}
		raw := json.RawMessage(data)
		if pred(raw) {
			return id, raw, true, nil
		}
	}
	return 0, nil, false, rows.Err()
}

func (s *devBoxStore) Remove(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM zb_devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("devbox remove: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDevBoxRecordNotFound
	}
	return nil
}

// Sync persists the current state of one record. Identical to Set, kept
// as a distinct method because the Shepherd calls it for a different
// reason (periodic resync of live state vs. an explicit overwrite) and the
// distinction is worth keeping visible at the call site.
func (s *devBoxStore) Sync(ctx context.Context, id int64, data json.RawMessage) error {
	return s.Set(ctx, id, data)
}

func (s *devBoxStore) ExportAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM zb_devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *devBoxStore) ExportAllObjs(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM zb_devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var objs []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		objs = append(objs, json.RawMessage(data))
	}
	return objs, rows.Err()
}

func (s *devBoxStore) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zb_devices`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
