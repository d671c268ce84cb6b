package store

import (
	"fmt"
	"os"
)

// zstExt marks a blob persisted in compressed form.
const zstExt = ".zst"

// CompressObject rewrites the persisted blob for hash in zstd-compressed
// form and removes the raw blob. It is a no-op when the object is already
// compressed or absent. Compression is always explicit; StoreObject never
// compresses on its own, so the default on-disk layout stays byte-identical
// to the original input.
func (s *ObjectStore) CompressObject(hash string) error {
	if len(hash) < 3 {
		return nil
	}

	if _, err := os.Stat(s.compressedPath(hash)); err == nil {
		return nil
	}

	content, err := os.ReadFile(s.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading object: %w", err)
	}

	compressed := s.encoder.EncodeAll(content, nil)
	if err := os.WriteFile(s.compressedPath(hash), compressed, 0644); err != nil {
		return fmt.Errorf("writing compressed object: %w", err)
	}
	if err := os.Remove(s.objectPath(hash)); err != nil {
		return fmt.Errorf("removing raw object: %w", err)
	}
	return nil
}

// DecompressObject restores the raw blob for hash from its compressed form
// and removes the compressed file. The restored bytes are byte-identical
// to the original input. No-op when the object is not compressed.
func (s *ObjectStore) DecompressObject(hash string) error {
	if len(hash) < 3 {
		return nil
	}

	raw, err := os.ReadFile(s.compressedPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading compressed object: %w", err)
	}

	content, err := s.decoder.DecodeAll(raw, nil)
	if err != nil {
		return fmt.Errorf("decompressing object: %w", err)
	}

	if err := os.WriteFile(s.objectPath(hash), content, 0644); err != nil {
		return fmt.Errorf("writing object: %w", err)
	}
	if err := os.Remove(s.compressedPath(hash)); err != nil {
		return fmt.Errorf("removing compressed object: %w", err)
	}
	return nil
}
