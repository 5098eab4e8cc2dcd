package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/persistence"
	pgstore "github.com/reimu/recommind/persistence/postgres"
)

func TestSaveUpsertsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := persistence.Record{
		LearnerID:  "L1",
		BatchCount: 2,
		Timestamp:  time.Unix(0, 0),
	}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO learner_snapshots").
		WithArgs(rec.LearnerID, payload, rec.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := pgstore.NewStore(mock, pgstore.Config{})
	require.NoError(t, store.Save(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadReturnsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT payload FROM learner_snapshots").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	store := pgstore.NewStore(mock, pgstore.Config{})
	_, found, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, found)
}
