// Package journal records classified file changes in BadgerDB, keyed per
// path in chronological order. It is a flat history of Change values, not
// a commit graph.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"versionvault/internal/diff"
)

// Entry is one recorded change.
type Entry struct {
	ID         string      `json:"id"`
	Change     diff.Change `json:"change"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Journal persists change entries in a BadgerDB instance owned by the
// caller.
type Journal struct {
	db *badger.DB
}

func New(db *badger.DB) *Journal {
	return &Journal{db: db}
}

// entryKey orders entries chronologically per path. The timestamp is
// zero-padded so lexicographic key order matches time order.
func entryKey(path string, recordedAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("change:%s:%020d:%s", path, recordedAt.UnixNano(), id))
}

func pathPrefix(path string) []byte {
	return []byte(fmt.Sprintf("change:%s:", path))
}

// Record stores a new entry for change and returns it.
func (j *Journal) Record(change diff.Change) (*Entry, error) {
	entry := &Entry{
		ID:         uuid.New().String(),
		Change:     change,
		RecordedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshaling entry: %w", err)
	}

	key := entryKey(change.Path, entry.RecordedAt, entry.ID)
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("recording change: %w", err)
	}
	return entry, nil
}

// History returns all entries for path, oldest first.
func (j *Journal) History(path string) ([]Entry, error) {
	var entries []Entry

	prefix := pathPrefix(path)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", path, err)
	}

	return entries, nil
}

// Latest returns the most recent entry for path, if any.
func (j *Journal) Latest(path string) (*Entry, bool, error) {
	entries, err := j.History(path)
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return &entries[len(entries)-1], true, nil
}
