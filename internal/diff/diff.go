// Package diff classifies changes between file snapshots and produces
// line-level diffs and similarity scores for text content. It operates
// purely on in-memory content; it never touches the object store.
package diff

import (
	"strings"

	"versionvault/internal/fileobj"
)

// DefaultSimilarityThreshold is the ratio at or above which two text files
// are considered similar.
const DefaultSimilarityThreshold = 0.6

// Algorithm computes an annotated line diff. Each output line carries a
// one-character prefix: " " for context, "-" for a removal, "+" for an
// addition.
type Algorithm interface {
	ComputeDiff(oldLines, newLines []string) []string
}

// Engine provides change classification, line diffing, and similarity
// scoring. It owns exactly one Algorithm at a time.
type Engine struct {
	algorithm Algorithm
}

// NewEngine creates an engine with the default greedy algorithm.
func NewEngine() *Engine {
	return &Engine{algorithm: SimpleDiff{}}
}

// SetAlgorithm swaps the diff algorithm. The previous implementation is
// discarded; the engine never aliases an algorithm across swaps.
func (e *Engine) SetAlgorithm(algo Algorithm) {
	e.algorithm = algo
}

// CompareFiles classifies the change between two snapshots. Either side
// may be nil: nil/nil is Unchanged with an empty path, nil old is Added,
// nil new is Removed. Hashes are computed lazily, so an unreadable file
// surfaces here as an error.
func (e *Engine) CompareFiles(oldFile, newFile fileobj.File) (Change, error) {
	if oldFile == nil && newFile == nil {
		return Change{Type: Unchanged}, nil
	}

	if oldFile == nil {
		hash, err := newFile.Hash()
		if err != nil {
			return Change{}, err
		}
		return Change{Type: Added, Path: newFile.Path(), NewHash: hash}, nil
	}

	if newFile == nil {
		hash, err := oldFile.Hash()
		if err != nil {
			return Change{}, err
		}
		return Change{Type: Removed, Path: oldFile.Path(), OldHash: hash}, nil
	}

	oldHash, err := oldFile.Hash()
	if err != nil {
		return Change{}, err
	}
	newHash, err := newFile.Hash()
	if err != nil {
		return Change{}, err
	}

	change := Change{Path: oldFile.Path(), OldHash: oldHash, NewHash: newHash}
	if oldHash == newHash {
		change.Type = Unchanged
	} else {
		change.Type = Modified
	}
	return change, nil
}

// GenerateLineDiff produces the annotated line diff between two text
// files using the engine's current algorithm. Either side nil yields an
// empty diff.
func (e *Engine) GenerateLineDiff(oldFile, newFile *fileobj.TextFile) ([]string, error) {
	if oldFile == nil || newFile == nil {
		return nil, nil
	}

	oldLines, err := oldFile.Lines()
	if err != nil {
		return nil, err
	}
	newLines, err := newFile.Lines()
	if err != nil {
		return nil, err
	}

	return e.algorithm.ComputeDiff(oldLines, newLines), nil
}

// CalculateSimilarity returns the normalized Levenshtein similarity of two
// strings: 1 - distance/max(len). Both empty yields 1.0, exactly one empty
// yields 0.0. The score is symmetric.
func (e *Engine) CalculateSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	m, n := len(ra), len(rb)

	if m == 0 && n == 0 {
		return 1.0
	}
	if m == 0 || n == 0 {
		return 0.0
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min3(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}

	distance := prev[n]
	maxLen := m
	if n > maxLen {
		maxLen = n
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// AreFilesSimilar joins each file's lines (trailing newline per line) and
// reports whether their similarity meets threshold.
func (e *Engine) AreFilesSimilar(a, b *fileobj.TextFile, threshold float64) (bool, error) {
	linesA, err := a.Lines()
	if err != nil {
		return false, err
	}
	linesB, err := b.Lines()
	if err != nil {
		return false, err
	}

	return e.CalculateSimilarity(joinWithNewlines(linesA), joinWithNewlines(linesB)) >= threshold, nil
}

func joinWithNewlines(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
