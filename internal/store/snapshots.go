package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Curriculum string `json:"curriculum"`
	Revision   int64  `json:"revision"`
	Size       int64  `json:"size"`
	UpdatedAt  string `json:"updated_at"`
}

// LoadSnapshot returns the payload stored for curriculum, or nil, nil when
// there is none.
func (s *Store) LoadSnapshot(ctx context.Context, curriculum string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE curriculum = ?
	`, curriculum).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if payload == nil {
		payload = []byte{}
	}
	return payload, nil
}

// SaveSnapshot stores payload for curriculum, replacing any previous
// snapshot and bumping its revision.
func (s *Store) SaveSnapshot(ctx context.Context, curriculum string, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (curriculum, payload, revision, updated_at)
		VALUES (?, ?, 1, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(curriculum) DO UPDATE SET
			payload = excluded.payload,
			revision = snapshots.revision + 1,
			updated_at = excluded.updated_at
	`, curriculum, payload)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// ClearSnapshot deletes the snapshot for curriculum and records the reset.
// Clearing a curriculum with no snapshot is not an error.
func (s *Store) ClearSnapshot(ctx context.Context, curriculum string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `
		SELECT revision FROM snapshots WHERE curriculum = ?
	`, curriculum).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE curriculum = ?`, curriculum); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resets (curriculum, revision, reset_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	`, curriculum, revision); err != nil {
		return fmt.Errorf("clear snapshot: record reset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear snapshot: commit: %w", err)
	}
	return nil
}

// Snapshots lists stored snapshots ordered by curriculum.
func (s *Store) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT curriculum, revision, length(payload), updated_at
		FROM snapshots
		ORDER BY curriculum ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Curriculum, &info.Revision, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// ResetCount returns how many times curriculum's progress was cleared.
func (s *Store) ResetCount(ctx context.Context, curriculum string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM resets WHERE curriculum = ?
	`, curriculum).Scan(&n); err != nil {
		return 0, fmt.Errorf("count resets: %w", err)
	}
	return n, nil
}
