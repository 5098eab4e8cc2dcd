// Package sqlite implements persistence.Snapshotter against a local
// SQLite file via mattn/go-sqlite3, for single-process or offline
// deployments that should not require a Postgres instance.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reimu/recommind/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS learner_snapshots (
	learner_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// Store persists learner snapshots in a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and ensures the backing
// table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

var _ persistence.Snapshotter = (*Store)(nil)

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, r persistence.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sqlite: marshaling record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO learner_snapshots (learner_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(learner_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, r.LearnerID, payload, r.Timestamp)
	if err != nil {
		return fmt.Errorf("sqlite: saving snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, learnerID string) (persistence.Record, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM learner_snapshots WHERE learner_id = ?`, learnerID).Scan(&payload)
	if err == sql.ErrNoRows {
		return persistence.Record{}, false, nil
	}
	if err != nil {
		return persistence.Record{}, false, fmt.Errorf("sqlite: loading snapshot: %w", err)
	}
	var r persistence.Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return persistence.Record{}, false, fmt.Errorf("sqlite: unmarshaling snapshot: %w", err)
	}
	return r, true, nil
}

func (s *Store) Delete(ctx context.Context, learnerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM learner_snapshots WHERE learner_id = ?`, learnerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snapshot: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT learner_id FROM learner_snapshots ORDER BY learner_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning learner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
