package docdb

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDocDB(t *testing.T, db DocDB) {
	ctx := context.Background()
	if deadline, ok := t.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}
	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	cfgs, err := db.LoadConfig(ctx)
	require.NoError(t, err)
	require.Empty(t, cfgs)

	err = db.SaveConfig(ctx, map[string]string{"test_k": "test_v"})
	require.NoError(t, err)

	cfgs, err = db.LoadConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"test_k": "test_v"}, cfgs)

	// saving replaces every module
	err = db.SaveConfig(ctx, map[string]string{"cache": `{"denominator":"configured_total"}`})
	require.NoError(t, err)

	cfgs, err = db.LoadConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"cache": `{"denominator":"configured_total"}`}, cfgs)
}

func TestOpenUnknownBackend(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "cm-test-.*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = Open(context.Background(), "leveldb", dir, "", LevelInfo)
	require.EqualError(t, err, `unknown docdb backend "leveldb"`)
}

func TestOpenSQLite(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "cm-test-.*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := Open(context.Background(), BackendSQLite, dir, "", LevelInfo)
	require.NoError(t, err)
	testDocDB(t, db)
}
