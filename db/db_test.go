package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/0xPolygon/cdk-l2node/db/types"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

const testMigration = `
-- +migrate Down
DROP TABLE IF EXISTS /*dbprefix*/entry;

-- +migrate Up
CREATE TABLE /*dbprefix*/entry (
	num  INTEGER PRIMARY KEY,
	hash VARCHAR NOT NULL
);
`

type entry struct {
	Num  uint64      `meddler:"num"`
	Hash common.Hash `meddler:"hash,hash"`
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	database, err := NewSQLiteDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	err = RunMigrationsDB(log.GetDefaultLogger(), database, []types.Migration{
		{ID: "0001", SQL: testMigration, Prefix: "a_"},
		{ID: "0001", SQL: testMigration, Prefix: "b_"},
	})
	require.NoError(t, err)
	return database
}

func TestMigrationsWithPrefix(t *testing.T) {
	database := newTestDB(t)

	for _, table := range []string{"a_entry", "b_entry"} {
		require.NoError(t, meddler.Insert(database, table, &entry{Num: 1, Hash: common.HexToHash("0x01")}))
	}

	var e entry
	err := meddler.QueryRow(database, &e, `SELECT * FROM b_entry WHERE num = $1;`, 1)
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0x01"), e.Hash)

	err = meddler.QueryRow(database, &e, `SELECT * FROM a_entry WHERE num = $1;`, 2)
	require.ErrorIs(t, ReturnErrNotFound(err), ErrNotFound)
}

func TestMigrationWithoutSeparator(t *testing.T) {
	database, err := NewSQLiteDB(filepath.Join(t.TempDir(), "bad.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	err = RunMigrationsDB(log.GetDefaultLogger(), database, []types.Migration{
		{ID: "0001", SQL: "CREATE TABLE x (a INTEGER);"},
	})
	require.Error(t, err)
}

func TestTxCallbacks(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	var committed, rolledBack bool
	tx, err := NewTx(ctx, database)
	require.NoError(t, err)
	tx.AddCommitCallback(func() { committed = true })
	tx.AddRollbackCallback(func() { rolledBack = true })
	require.NoError(t, meddler.Insert(tx, "a_entry", &entry{Num: 7, Hash: common.HexToHash("0x07")}))
	require.NoError(t, tx.Rollback())
	require.True(t, rolledBack)
	require.False(t, committed)

	var e entry
	err = meddler.QueryRow(database, &e, `SELECT * FROM a_entry WHERE num = $1;`, 7)
	require.ErrorIs(t, ReturnErrNotFound(err), ErrNotFound)

	tx, err = NewTx(ctx, database)
	require.NoError(t, err)
	tx.AddCommitCallback(func() { committed = true })
	require.NoError(t, meddler.Insert(tx, "a_entry", &entry{Num: 7, Hash: common.HexToHash("0x07")}))
	require.NoError(t, tx.Commit())
	require.True(t, committed)
	require.NoError(t, meddler.QueryRow(database, &e, `SELECT * FROM a_entry WHERE num = $1;`, 7))
}
