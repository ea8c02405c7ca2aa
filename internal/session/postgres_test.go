package session_test

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/verdeando/internal/session"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stationKey = "station-1"

	loadSessionQuery = `
	SELECT payload
	FROM sessions
	WHERE key = $1;
`
	saveSessionQuery = `
	INSERT INTO sessions (key, payload, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET payload = EXCLUDED.payload, updated_at = now();
`
	deleteSessionQuery = `
	DELETE FROM sessions
	WHERE key = $1;
`
)

func TestPostgresStore_Load(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		payload, err := json.Marshal(collaborator())
		require.NoError(t, err)
		mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).
			WithArgs(stationKey).
			WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

		store := session.NewPostgresStore(mock, stationKey, logger)
		user, err := store.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, collaborator(), user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).
			WithArgs(stationKey).
			WillReturnError(pgx.ErrNoRows)

		store := session.NewPostgresStore(mock, stationKey, logger)
		_, err = store.Load(ctx)

		require.ErrorIs(t, err, session.ErrNoSession)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).
			WithArgs(stationKey).
			WillReturnError(assert.AnError)

		store := session.NewPostgresStore(mock, stationKey, logger)
		_, err = store.Load(ctx)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to query session")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Save(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := slog.Default()

	payload, err := json.Marshal(collaborator())
	require.NoError(t, err)

	t.Run("upsert", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(saveSessionQuery)).
			WithArgs(stationKey, payload).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		store := session.NewPostgresStore(mock, stationKey, logger)

		require.NoError(t, store.Save(ctx, collaborator()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(saveSessionQuery)).
			WithArgs(stationKey, payload).
			WillReturnError(assert.AnError)

		store := session.NewPostgresStore(mock, stationKey, logger)
		err = store.Save(ctx, collaborator())

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to save session")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_DeleteAndSchema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS sessions")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionQuery)).
		WithArgs(stationKey).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	store := session.NewPostgresStore(mock, stationKey, slog.Default())

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Delete(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
