// Package postgres implements persistence.Snapshotter against a Postgres
// table via jackc/pgx/v5, grounded on the teacher's config-struct
// constructor pattern (rag/store/chromem.go's ChromemConfig ->
// NewChromemVectorStore).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reimu/recommind/persistence"
)

// Conn is the slice of pgx's pool/connection surface Store needs. It is
// satisfied by *pgxpool.Pool in production and by pgxmock.PgxPoolIface in
// tests, so the SQL this store issues can be verified without a live
// database.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config configures a Store. Table defaults to "learner_snapshots" when
// empty.
type Config struct {
	Table string
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = "learner_snapshots"
	}
	return c
}

// Store persists learner snapshots as one row per learner in a Postgres
// table (learner_id text primary key, payload jsonb, updated_at
// timestamptz).
type Store struct {
	pool  Conn
	table string
}

// NewStore builds a Store against an already-connected pool or mock.
func NewStore(pool Conn, cfg Config) *Store {
	cfg = cfg.withDefaults()
	return &Store{pool: pool, table: cfg.Table}
}

var _ persistence.Snapshotter = (*Store)(nil)

func (s *Store) Save(ctx context.Context, r persistence.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("postgres: marshaling record: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (learner_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (learner_id) DO UPDATE SET payload = $2, updated_at = $3
	`, s.table)
	_, err = s.pool.Exec(ctx, query, r.LearnerID, payload, r.Timestamp)
	if err != nil {
		return fmt.Errorf("postgres: saving snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, learnerID string) (persistence.Record, bool, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE learner_id = $1`, s.table)
	var payload []byte
	err := s.pool.QueryRow(ctx, query, learnerID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.Record{}, false, nil
	}
	if err != nil {
		return persistence.Record{}, false, fmt.Errorf("postgres: loading snapshot: %w", err)
	}
	var r persistence.Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return persistence.Record{}, false, fmt.Errorf("postgres: unmarshaling snapshot: %w", err)
	}
	return r, true, nil
}

func (s *Store) Delete(ctx context.Context, learnerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE learner_id = $1`, s.table)
	_, err := s.pool.Exec(ctx, query, learnerID)
	if err != nil {
		return fmt.Errorf("postgres: deleting snapshot: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT learner_id FROM %s ORDER BY learner_id`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scanning learner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Schema is the DDL a deployment runs once to create the backing table.
const Schema = `
CREATE TABLE IF NOT EXISTS learner_snapshots (
	learner_id TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
