package fileobj

import "os"

// BinaryFile models content as a raw byte sequence; the hash input is the
// bytes verbatim.
type BinaryFile struct {
	fileState
	data   []byte
	loaded bool
}

func NewBinaryFile(path string) *BinaryFile {
	return &BinaryFile{fileState: fileState{path: path}}
}

func (b *BinaryFile) IsBinary() bool { return true }

func (b *BinaryFile) ReadContent() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, readFailure(b.path, err)
	}

	b.data = data
	b.loaded = true
	b.size = int64(len(data))
	return b.data, nil
}

func (b *BinaryFile) WriteContent(data []byte) error {
	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return writeFailure(b.path, err)
	}

	b.data = append([]byte(nil), data...)
	b.loaded = true
	b.size = int64(len(b.data))
	b.dirty = true
	return nil
}

func (b *BinaryFile) Hash() (string, error) {
	if b.hash != "" && !b.dirty {
		return b.hash, nil
	}
	if !b.loaded {
		if _, err := b.ReadContent(); err != nil {
			return "", err
		}
	}
	b.hash = hashBytes(b.data)
	b.dirty = false
	return b.hash, nil
}

func (b *BinaryFile) Equal(other File) (bool, error) {
	return equalFiles(b, other)
}

// Data returns the raw bytes currently held in memory.
func (b *BinaryFile) Data() []byte { return b.data }
