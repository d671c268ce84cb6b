package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"versionvault/internal/diff"
	"versionvault/internal/journal"
	"versionvault/internal/store"
)

func setupTracker(t *testing.T) (*Tracker, *journal.Journal, string) {
	t.Helper()

	root := t.TempDir()

	st, err := store.New(filepath.Join(t.TempDir(), "objects"), store.Options{})
	require.NoError(t, err)

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jn := journal.New(db)

	tr, err := New(root, st, jn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })

	return tr, jn, root
}

func latestType(t *testing.T, jn *journal.Journal, path string) (diff.ChangeType, bool) {
	t.Helper()
	entry, ok, err := jn.Latest(path)
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	return entry.Change.Type, true
}

func TestTrackerRecordsChanges(t *testing.T) {
	_, jn, root := setupTracker(t)

	path := filepath.Join(root, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0644))

	require.Eventually(t, func() bool {
		entries, err := jn.History("note.txt")
		require.NoError(t, err)
		return len(entries) > 0 && entries[0].Change.Type == diff.Added
	}, 3*time.Second, 20*time.Millisecond, "creation should be journaled as added")

	require.NoError(t, os.WriteFile(path, []byte("second\n"), 0644))

	require.Eventually(t, func() bool {
		typ, ok := latestType(t, jn, "note.txt")
		return ok && typ == diff.Modified
	}, 3*time.Second, 20*time.Millisecond, "rewrite should be journaled as modified")

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		typ, ok := latestType(t, jn, "note.txt")
		return ok && typ == diff.Removed
	}, 3*time.Second, 20*time.Millisecond, "removal should be journaled as removed")
}

func TestTrackerIgnores(t *testing.T) {
	tr, jn, root := setupTracker(t)

	assert.True(t, tr.ShouldIgnore(".git"))
	assert.True(t, tr.ShouldIgnore(filepath.Join("node_modules", "pkg", "index.js")))
	assert.True(t, tr.ShouldIgnore(".vv"))
	assert.False(t, tr.ShouldIgnore("src"))
	assert.True(t, tr.ShouldIgnore(""))

	// Files in ignored directories never reach the journal.
	ignored := filepath.Join(root, ".git")
	require.NoError(t, os.MkdirAll(ignored, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ignored, "HEAD"), []byte("ref\n"), 0644))

	time.Sleep(200 * time.Millisecond)
	_, ok, err := jn.Latest(filepath.Join(".git", "HEAD"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackerExtraIgnore(t *testing.T) {
	root := t.TempDir()

	st, err := store.New(filepath.Join(t.TempDir(), "objects"), store.Options{})
	require.NoError(t, err)

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	defer db.Close()

	tr, err := New(root, st, journal.New(db), zap.NewNop(), "tmp")
	require.NoError(t, err)
	defer tr.Close()

	assert.True(t, tr.ShouldIgnore("tmp"))
}
