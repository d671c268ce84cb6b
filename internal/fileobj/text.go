package fileobj

import "os"

// TextFile models content as an ordered sequence of line-ending-normalized
// lines. Its canonical bytes are the lines rejoined with a trailing newline
// per line, so the hash is independent of the original line-ending style.
type TextFile struct {
	fileState
	lines  []string
	loaded bool
}

func NewTextFile(path string) *TextFile {
	return &TextFile{fileState: fileState{path: path}}
}

func (t *TextFile) IsBinary() bool { return false }

func (t *TextFile) ReadContent() ([]byte, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, readFailure(t.path, err)
	}

	t.lines = splitLines(data)
	t.loaded = true

	content := joinLines(t.lines)
	t.size = int64(len(content))
	return content, nil
}

func (t *TextFile) WriteContent(data []byte) error {
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return writeFailure(t.path, err)
	}

	t.lines = splitLines(data)
	t.loaded = true
	t.size = int64(len(joinLines(t.lines)))
	t.dirty = true
	return nil
}

func (t *TextFile) Hash() (string, error) {
	if t.hash != "" && !t.dirty {
		return t.hash, nil
	}
	if !t.loaded {
		if _, err := t.ReadContent(); err != nil {
			return "", err
		}
	}
	t.hash = hashBytes(joinLines(t.lines))
	t.dirty = false
	return t.hash, nil
}

func (t *TextFile) Equal(other File) (bool, error) {
	return equalFiles(t, other)
}

// Lines returns the line sequence, loading it from the origin path on
// first access if the content has not been set yet.
func (t *TextFile) Lines() ([]string, error) {
	if !t.loaded {
		if _, err := t.ReadContent(); err != nil {
			return nil, err
		}
	}
	return t.lines, nil
}

// SetLines replaces the in-memory content and marks the hash stale.
// It does not persist anything; the origin path is only touched by an
// explicit WriteContent.
func (t *TextFile) SetLines(lines []string) {
	t.lines = append([]string(nil), lines...)
	t.loaded = true
	t.size = int64(len(joinLines(t.lines)))
	t.dirty = true
}

func (t *TextFile) LineCount() int { return len(t.lines) }
