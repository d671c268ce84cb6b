package journal

import (
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versionvault/internal/diff"
)

func setupTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestJournal(t *testing.T) {
	db := setupTestDB(t)
	j := New(db)

	t.Run("record and history", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			change := diff.Change{
				Type:    diff.Modified,
				Path:    "src/main.go",
				OldHash: fmt.Sprintf("old%d", i),
				NewHash: fmt.Sprintf("new%d", i),
			}
			entry, err := j.Record(change)
			require.NoError(t, err)
			assert.NotEmpty(t, entry.ID)
			assert.False(t, entry.RecordedAt.IsZero())
		}

		entries, err := j.History("src/main.go")
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// Oldest first.
		for i, e := range entries {
			assert.Equal(t, fmt.Sprintf("new%d", i), e.Change.NewHash)
		}
	})

	t.Run("history is per path", func(t *testing.T) {
		_, err := j.Record(diff.Change{Type: diff.Added, Path: "other.go", NewHash: "abc"})
		require.NoError(t, err)

		entries, err := j.History("other.go")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		// A path that prefixes another must not pick up its entries.
		entries, err = j.History("other")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("latest", func(t *testing.T) {
		entry, ok, err := j.Latest("src/main.go")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "new2", entry.Change.NewHash)

		_, ok, err = j.Latest("never-recorded")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
