// Package fileobj provides the file content abstraction the rest of the
// system is built on: lazily loaded content, a cached SHA-256 identity
// hash, and a text/binary split that determines how hash input is derived.
package fileobj

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// sniffLen is how many leading bytes the binary detection heuristic reads.
const sniffLen = 512

// File is the common contract for text and binary file content.
// Hash is lazily computed and cached until the content is mutated.
type File interface {
	// Path returns the origin location. It is not part of identity.
	Path() string

	// Size returns the byte length of the canonical content.
	Size() int64

	// IsBinary reports which variant this is.
	IsBinary() bool

	// Hash returns the SHA-256 digest (lowercase hex) of the canonical
	// content bytes, loading content from the origin path if needed.
	Hash() (string, error)

	// ReadContent loads content from the origin path and returns the
	// canonical bytes. Read failures propagate unmodified.
	ReadContent() ([]byte, error)

	// WriteContent persists data to the origin path, replaces the
	// in-memory content, and invalidates the cached hash.
	WriteContent(data []byte) error

	// Equal compares identity hashes. Note this lazily computes the hash
	// on both sides as a side effect.
	Equal(other File) (bool, error)
}

// fileState carries the fields shared by both variants.
type fileState struct {
	path  string
	hash  string
	size  int64
	dirty bool
}

func (f *fileState) Path() string { return f.path }
func (f *fileState) Size() int64  { return f.size }

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func equalFiles(a, b File) (bool, error) {
	ah, err := a.Hash()
	if err != nil {
		return false, err
	}
	bh, err := b.Hash()
	if err != nil {
		return false, err
	}
	return ah == bh, nil
}

// New constructs the appropriate File variant for path using DetectBinary.
// The content is not loaded until first read or hash request, so New never
// fails; an unreadable path surfaces as an error from ReadContent or Hash.
func New(path string) File {
	if DetectBinary(path) {
		return NewBinaryFile(path)
	}
	return NewTextFile(path)
}

// DetectBinary inspects the first 512 bytes of path: any null byte
// classifies the file as binary. This is an approximate heuristic, not a
// full binary-content detector. Unreadable paths default to text.
func DetectBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// FromBytes reconstructs a File from in-memory bytes without touching the
// filesystem. Classification applies the same null-byte heuristic to the
// leading bytes of data. The object store uses this to rebuild content
// retrieved from a blob or the cache.
func FromBytes(path string, data []byte) File {
	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		bf := NewBinaryFile(path)
		bf.data = append([]byte(nil), data...)
		bf.loaded = true
		bf.size = int64(len(data))
		return bf
	}
	tf := NewTextFile(path)
	tf.lines = splitLines(data)
	tf.loaded = true
	tf.size = int64(len(joinLines(tf.lines)))
	return tf
}

// splitLines normalizes line endings (CRLF and lone CR fold to LF) and
// splits into lines. A trailing newline does not produce an extra empty
// line; a final line without a newline is still kept.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	normalized = bytes.ReplaceAll(normalized, []byte("\r"), []byte("\n"))
	normalized = bytes.TrimSuffix(normalized, []byte("\n"))

	parts := bytes.Split(normalized, []byte("\n"))
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(p)
	}
	return lines
}

// joinLines reconstitutes canonical content: every line followed by a
// newline. Two files with the same line sequence hash identically no
// matter what line-ending style they were written with.
func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func readFailure(path string, err error) error {
	return fmt.Errorf("reading file %s: %w", path, err)
}

func writeFailure(path string, err error) error {
	return fmt.Errorf("writing file %s: %w", path, err)
}
