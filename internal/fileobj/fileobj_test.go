package fileobj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestTextFileHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		path := writeTemp(t, "a.txt", []byte("foo\nbar\n"))
		f := NewTextFile(path)

		h1, err := f.Hash()
		require.NoError(t, err)
		h2, err := f.Hash()
		require.NoError(t, err)

		assert.Equal(t, h1, h2)
		assert.Len(t, h1, 64)
	})

	t.Run("line ending normalization", func(t *testing.T) {
		lf := NewTextFile(writeTemp(t, "lf.txt", []byte("foo\nbar\n")))
		crlf := NewTextFile(writeTemp(t, "crlf.txt", []byte("foo\r\nbar\r\n")))
		cr := NewTextFile(writeTemp(t, "cr.txt", []byte("foo\rbar\r")))

		hLF, err := lf.Hash()
		require.NoError(t, err)
		hCRLF, err := crlf.Hash()
		require.NoError(t, err)
		hCR, err := cr.Hash()
		require.NoError(t, err)

		assert.Equal(t, hLF, hCRLF)
		assert.Equal(t, hLF, hCR)
	})

	t.Run("missing trailing newline", func(t *testing.T) {
		a := NewTextFile(writeTemp(t, "a.txt", []byte("foo\nbar\n")))
		b := NewTextFile(writeTemp(t, "b.txt", []byte("foo\nbar")))

		ha, err := a.Hash()
		require.NoError(t, err)
		hb, err := b.Hash()
		require.NoError(t, err)

		assert.Equal(t, ha, hb)
	})

	t.Run("set lines marks dirty", func(t *testing.T) {
		path := writeTemp(t, "a.txt", []byte("foo\n"))
		f := NewTextFile(path)

		h1, err := f.Hash()
		require.NoError(t, err)

		f.SetLines([]string{"foo", "extra"})
		h2, err := f.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)

		// SetLines never persists; the backing file is unchanged.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("foo\n"), data)
	})
}

func TestTextFileReadWrite(t *testing.T) {
	t.Run("read reconstitutes canonical bytes", func(t *testing.T) {
		f := NewTextFile(writeTemp(t, "a.txt", []byte("foo\r\nbar")))
		content, err := f.ReadContent()
		require.NoError(t, err)
		assert.Equal(t, []byte("foo\nbar\n"), content)
		assert.Equal(t, int64(8), f.Size())
		assert.Equal(t, 2, f.LineCount())
	})

	t.Run("read failure propagates", func(t *testing.T) {
		f := NewTextFile(filepath.Join(t.TempDir(), "missing.txt"))
		_, err := f.ReadContent()
		assert.Error(t, err)

		_, err = f.Hash()
		assert.Error(t, err)
	})

	t.Run("write updates content and hash", func(t *testing.T) {
		path := writeTemp(t, "a.txt", []byte("foo\n"))
		f := NewTextFile(path)

		h1, err := f.Hash()
		require.NoError(t, err)

		require.NoError(t, f.WriteContent([]byte("baz\n")))
		h2, err := f.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("baz\n"), data)

		lines, err := f.Lines()
		require.NoError(t, err)
		assert.Equal(t, []string{"baz"}, lines)
	})
}

func TestBinaryFile(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xff, 0x00, 'a'}

	t.Run("raw round trip", func(t *testing.T) {
		f := NewBinaryFile(writeTemp(t, "a.bin", payload))
		content, err := f.ReadContent()
		require.NoError(t, err)
		assert.Equal(t, payload, content)
		assert.Equal(t, int64(len(payload)), f.Size())
	})

	t.Run("write marks dirty", func(t *testing.T) {
		f := NewBinaryFile(writeTemp(t, "a.bin", payload))
		h1, err := f.Hash()
		require.NoError(t, err)

		require.NoError(t, f.WriteContent([]byte{0x00, 0x02}))
		h2, err := f.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestDetectBinary(t *testing.T) {
	t.Run("null byte means binary", func(t *testing.T) {
		path := writeTemp(t, "a.bin", []byte{'a', 0x00, 'b'})
		assert.True(t, DetectBinary(path))

		f := New(path)
		assert.True(t, f.IsBinary())
		_, ok := f.(*BinaryFile)
		assert.True(t, ok)
	})

	t.Run("plain text", func(t *testing.T) {
		path := writeTemp(t, "a.txt", []byte("hello\nworld\n"))
		assert.False(t, DetectBinary(path))

		f := New(path)
		assert.False(t, f.IsBinary())
		_, ok := f.(*TextFile)
		assert.True(t, ok)
	})

	t.Run("unreadable path defaults to text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		assert.False(t, DetectBinary(path))
	})
}

func TestEqual(t *testing.T) {
	a := NewTextFile(writeTemp(t, "a.txt", []byte("same\n")))
	b := NewTextFile(writeTemp(t, "b.txt", []byte("same\n")))
	c := NewTextFile(writeTemp(t, "c.txt", []byte("other\n")))

	eq, err := a.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq, "equal content at different paths must compare equal")

	eq, err = a.Equal(c)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestFromBytes(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		f := FromBytes("reconstructed.txt", []byte("foo\nbar\n"))
		tf, ok := f.(*TextFile)
		require.True(t, ok)

		lines, err := tf.Lines()
		require.NoError(t, err)
		assert.Equal(t, []string{"foo", "bar"}, lines)

		// No filesystem access needed: content is seeded in memory.
		h, err := f.Hash()
		require.NoError(t, err)
		assert.Len(t, h, 64)
	})

	t.Run("binary", func(t *testing.T) {
		payload := []byte{0x00, 0x10}
		f := FromBytes("reconstructed.bin", payload)
		bf, ok := f.(*BinaryFile)
		require.True(t, ok)
		assert.Equal(t, payload, bf.Data())
	})

	t.Run("matches on-disk hash", func(t *testing.T) {
		path := writeTemp(t, "a.txt", []byte("foo\nbar\n"))
		onDisk := NewTextFile(path)
		inMem := FromBytes("other.txt", []byte("foo\nbar\n"))

		eq, err := onDisk.Equal(inMem)
		require.NoError(t, err)
		assert.True(t, eq)
	})
}
