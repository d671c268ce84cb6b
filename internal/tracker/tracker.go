// Package tracker watches a workspace root and snapshots changed files
// through the object store, recording classified changes in the journal.
package tracker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"versionvault/internal/diff"
	"versionvault/internal/fileobj"
	"versionvault/internal/journal"
	"versionvault/internal/store"
)

// defaultIgnoreDirs are directory names skipped at any depth.
var defaultIgnoreDirs = []string{".vv", ".git", "node_modules", "vendor", "dist", "build"}

// Tracker wires the core together: filesystem events flow through the
// diff engine for classification, the object store for persistence, and
// the journal for history.
type Tracker struct {
	root    string
	store   *store.ObjectStore
	journal *journal.Journal
	engine  *diff.Engine
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu     sync.Mutex
	ignore map[string]bool
}

// New creates a tracker over root and starts watching. extraIgnore adds
// directory names to the built-in ignore set.
func New(root string, st *store.ObjectStore, jn *journal.Journal, logger *zap.Logger, extraIgnore ...string) (*Tracker, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	ignore := make(map[string]bool)
	for _, dir := range defaultIgnoreDirs {
		ignore[dir] = true
	}
	for _, dir := range extraIgnore {
		ignore[dir] = true
	}

	t := &Tracker{
		root:    root,
		store:   st,
		journal: jn,
		engine:  diff.NewEngine(),
		watcher: watcher,
		logger:  logger,
		ignore:  ignore,
	}

	if err := t.addWatches(); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("initializing watches: %w", err)
	}

	go t.watchLoop()

	return t, nil
}

// addWatches registers the root and every non-ignored subdirectory.
func (t *Tracker) addWatches() error {
	return filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(t.root, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		if rel != "." && t.ShouldIgnore(rel) {
			return filepath.SkipDir
		}

		if err := t.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

func (t *Tracker) watchLoop() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			t.handleEvent(event)
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (t *Tracker) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(t.root, event.Name)
	if err != nil {
		t.logger.Error("getting relative path", zap.Error(err))
		return
	}
	if t.ShouldIgnore(rel) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := t.watcher.Add(event.Name); err != nil {
				t.logger.Error("adding new directory to watcher", zap.Error(err))
			}
			return
		}
		t.snapshot(rel, event.Name)

	case event.Op&fsnotify.Write == fsnotify.Write:
		t.snapshot(rel, event.Name)

	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		t.recordRemoval(rel)
	}
}

// snapshot stores the file's current content and journals the change
// classified against the previously recorded version.
func (t *Tracker) snapshot(rel, abs string) {
	f := fileobj.New(abs)

	if _, err := t.store.StoreObject(f); err != nil {
		t.logger.Error("storing object", zap.String("path", rel), zap.Error(err))
		return
	}

	var prevFile fileobj.File
	prev, ok, err := t.journal.Latest(rel)
	if err != nil {
		t.logger.Error("reading journal", zap.String("path", rel), zap.Error(err))
		return
	}
	if ok && prev.Change.NewHash != "" {
		if pf, found, err := t.store.RetrieveObject(prev.Change.NewHash); err == nil && found {
			prevFile = pf
		}
	}

	change, err := t.engine.CompareFiles(prevFile, f)
	if err != nil {
		t.logger.Error("comparing files", zap.String("path", rel), zap.Error(err))
		return
	}
	if change.Type == diff.Unchanged {
		return
	}
	change.Path = rel

	if _, err := t.journal.Record(change); err != nil {
		t.logger.Error("recording change", zap.String("path", rel), zap.Error(err))
		return
	}
	t.logger.Info("recorded change",
		zap.String("path", rel),
		zap.String("type", string(change.Type)),
	)
}

func (t *Tracker) recordRemoval(rel string) {
	prev, ok, err := t.journal.Latest(rel)
	if err != nil {
		t.logger.Error("reading journal", zap.String("path", rel), zap.Error(err))
		return
	}
	if !ok || prev.Change.Type == diff.Removed {
		return
	}

	change := diff.Change{Type: diff.Removed, Path: rel, OldHash: prev.Change.NewHash}
	if _, err := t.journal.Record(change); err != nil {
		t.logger.Error("recording removal", zap.String("path", rel), zap.Error(err))
		return
	}
	t.logger.Info("recorded removal", zap.String("path", rel))
}

// ShouldIgnore reports whether any component of the relative path is in
// the ignore set.
func (t *Tracker) ShouldIgnore(path string) bool {
	if path == "" {
		return true
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if t.ignore[part] {
			return true
		}
	}
	return false
}

// Close releases the filesystem watcher.
func (t *Tracker) Close() error {
	return t.watcher.Close()
}
