// Package store implements the content-addressed object store: blobs
// persisted under a sharded directory layout keyed by SHA-256 hash, with a
// bounded LRU cache in front and an in-memory reverse index from hash to
// last-known origin path.
package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"versionvault/internal/fileobj"
)

// DefaultRoot is the store location when none is configured.
const DefaultRoot = ".vv/objects"

// DefaultCacheSize bounds the in-memory cache when none is configured.
const DefaultCacheSize = 2000

// placeholderPath seeds reconstructed content when the origin of a hash is
// unknown (the reverse index is in-memory only and lost on restart).
const placeholderPath = "unknown"

// Options configures an ObjectStore.
type Options struct {
	// CacheSize is the maximum number of blobs held in memory.
	CacheSize int
}

// ObjectStore persists and retrieves content by hash. There is one shared
// instance per process, constructed explicitly and passed to collaborators.
// All methods are safe for concurrent use: the LRU cache synchronizes
// internally and the reverse path index is guarded by a read-write lock.
type ObjectStore struct {
	root  string
	cache *lru.Cache[string, []byte]

	mu    sync.RWMutex
	paths map[string]string // hash -> last-known origin path, best-effort only

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates an ObjectStore rooted at root, creating the directory if
// needed. An empty root selects DefaultRoot.
func New(root string, opts Options) (*ObjectStore, error) {
	if root == "" {
		root = DefaultRoot
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating object store directory: %w", err)
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &ObjectStore{
		root:    root,
		cache:   cache,
		paths:   make(map[string]string),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Root returns the store's root directory.
func (s *ObjectStore) Root() string { return s.root }

// CacheLen returns the number of blobs currently held in memory. It never
// exceeds the configured cache size.
func (s *ObjectStore) CacheLen() int { return s.cache.Len() }

// objectPath is the sharded blob location: first two hex characters as the
// directory, remainder as the filename.
func (s *ObjectStore) objectPath(hash string) string {
	return filepath.Join(s.root, hash[:2], hash[2:])
}

func (s *ObjectStore) compressedPath(hash string) string {
	return s.objectPath(hash) + zstExt
}

// StoreObject persists the content of f, deduplicating by hash: if a blob
// with the same hash already exists, nothing is rewritten. The hash is
// returned either way.
func (s *ObjectStore) StoreObject(f fileobj.File) (string, error) {
	hash, err := f.Hash()
	if err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}

	if s.HasObject(hash) {
		return hash, nil
	}

	content, err := f.ReadContent()
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}

	s.cache.Add(hash, content)

	path := s.objectPath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating shard directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing object: %w", err)
	}

	s.mu.Lock()
	s.paths[hash] = f.Path()
	s.mu.Unlock()

	return hash, nil
}

// RetrieveObject looks up content by hash, cache first. An absent object
// is an expected outcome and reported as found == false, not an error.
// Disk hits backfill the cache. The returned File is reconstructed from
// the blob bytes, classified text or binary by the same null-byte
// heuristic used for real files and seeded with the last-known origin
// path when the reverse index still holds one.
func (s *ObjectStore) RetrieveObject(hash string) (fileobj.File, bool, error) {
	if len(hash) < 3 {
		return nil, false, nil
	}

	if content, ok := s.cache.Get(hash); ok {
		return fileobj.FromBytes(s.originPath(hash), content), true, nil
	}

	content, err := s.readBlob(hash)
	if err != nil {
		return nil, false, err
	}
	if content == nil {
		return nil, false, nil
	}

	s.cache.Add(hash, content)
	return fileobj.FromBytes(s.originPath(hash), content), true, nil
}

// readBlob reads the persisted blob in either raw or compressed form.
// A nil slice with nil error means the blob does not exist.
func (s *ObjectStore) readBlob(hash string) ([]byte, error) {
	content, err := os.ReadFile(s.objectPath(hash))
	if err == nil {
		return content, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading object: %w", err)
	}

	raw, err := os.ReadFile(s.compressedPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}

	content, err = s.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing object: %w", err)
	}
	return content, nil
}

// HasObject reports whether the hash is present in the cache or on disk.
// It mutates neither.
func (s *ObjectStore) HasObject(hash string) bool {
	if len(hash) < 3 {
		return false
	}
	if s.cache.Contains(hash) {
		return true
	}
	if _, err := os.Stat(s.objectPath(hash)); err == nil {
		return true
	}
	_, err := os.Stat(s.compressedPath(hash))
	return err == nil
}

// StorageSize sums the sizes of all persisted blobs under the store root.
func (s *ObjectStore) StorageSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking object store: %w", err)
	}
	return total, nil
}

// Cleanup removes persisted blobs whose last-modified age in whole days
// exceeds maxAgeDays. The cache and the reverse path index are left
// untouched, so a removed object can still report HasObject == true
// through a stale cache entry until it is evicted. That gap is accepted;
// the reverse index is best-effort by contract and never used to assert
// existence.
func (s *ObjectStore) Cleanup(maxAgeDays int) error {
	now := time.Now()
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		ageDays := int(now.Sub(info.ModTime()).Hours()) / 24
		if ageDays > maxAgeDays {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing object %s: %w", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cleaning up object store: %w", err)
	}
	return nil
}

func (s *ObjectStore) originPath(hash string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if path, ok := s.paths[hash]; ok {
		return path
	}
	return placeholderPath
}
