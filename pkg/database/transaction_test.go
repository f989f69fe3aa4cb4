package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger), mock
}

func TestGetTx_RollbackReachesDriver(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, tx, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, tx.IsOpen())

	require.NoError(t, tx.Rollback(ctx))
	assert.False(t, tx.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_NestedCallJoinsWithoutClosing(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx, outer, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)

	_, inner, err := db.GetTx(ctx, nil)
	require.NoError(t, err)

	// the joined view never closes the opener's transaction
	require.NoError(t, inner.Rollback(ctx))
	require.NoError(t, inner.Commit(ctx))
	assert.True(t, outer.IsOpen())

	require.NoError(t, outer.Commit(ctx))
	assert.False(t, outer.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_ClosedTransactionIsNotRejoined(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, first, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Commit(ctx))

	ctx, second, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	require.True(t, second.IsOpen())

	require.NoError(t, second.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_CloseIsIdempotent(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx, tx, err := db.GetTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
