package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pharmapos/internal/schema"
	"pharmapos/internal/settings"
	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEngine(t *testing.T) *store.Engine {
	t.Helper()
	e := store.NewEngine(memstore.New(), schema.Default())
	require.NoError(t, e.Open(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestRunBackupThenRestore(t *testing.T) {
	ctx := context.Background()
	src := openEngine(t)
	_, err := src.Insert(ctx, schema.Products,
		store.Record{"id": "p1", "user_id": "u1", "name": "Zinc", "price": 3.5, "stock_quantity": 5},
		store.Record{"id": "p2", "user_id": "u1", "name": "Iron", "price": 2, "stock_quantity": 0},
	)
	require.NoError(t, err)
	_, err = src.Insert(ctx, schema.Customers, store.Record{"id": "c1", "user_id": "u1", "name": "Ali", "outstanding_balance": 80})
	require.NoError(t, err)

	st, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	path, err := RunBackup(ctx, BackupConfig{Engine: src, Settings: st, Dir: dir, Now: func() time.Time { return at }})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_20250314T093000.000Z.json"), path)

	dst := openEngine(t)
	n, err := RestoreBackup(ctx, dst, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := dst.Select(ctx, schema.Products, store.Filters{Gt: map[string]any{"price": 3}})
	require.NoError(t, err)
	require.Len(t, rows, 1, "amounts survive as numbers")
	assert.Equal(t, "p1", rows[0].ID())

	c, err := dst.Select(ctx, schema.Customers, store.Where("id", "c1"))
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.True(t, store.Equal(c[0]["outstanding_balance"], 80))
}

func TestRunBackup_Prunes(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t)
	dir := t.TempDir()
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		tick := at.Add(time.Duration(i) * time.Minute)
		_, err := RunBackup(ctx, BackupConfig{Engine: e, Dir: dir, Keep: 2, Now: func() time.Time { return tick }})
		require.NoError(t, err)
	}
	files, err := ListBackups(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[0], "093200")
	assert.Contains(t, files[1], "093300")
}

func TestRestoreBackup_BadFile(t *testing.T) {
	e := openEngine(t)
	path := filepath.Join(t.TempDir(), "backup_x.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := RestoreBackup(context.Background(), e, path)
	assert.Error(t, err)

	_, err = RestoreBackup(context.Background(), e, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestListBackups_MissingDir(t *testing.T) {
	files, err := ListBackups(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStartBackupCron_SkipsWhenDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := openEngine(t)
	st, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	_, err = st.SaveSystem(settings.SystemPatch{AutoBackup: ptr(false)})
	require.NoError(t, err)

	dir := t.TempDir()
	StartBackupCron(ctx, BackupConfig{Engine: e, Settings: st, Dir: dir, Interval: 10 * time.Millisecond})
	time.Sleep(60 * time.Millisecond)
	files, err := ListBackups(dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = st.SaveSystem(settings.SystemPatch{AutoBackup: ptr(true)})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		files, _ := ListBackups(dir)
		return len(files) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func ptr[T any](v T) *T { return &v }
