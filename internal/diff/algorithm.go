package diff

import "github.com/pmezard/go-difflib/difflib"

// SimpleDiff is a greedy two-pointer merge over the two line sequences:
// equal lines advance both pointers; otherwise the lexicographically
// smaller old line is emitted as a removal, else the new line as an
// addition. It is not guaranteed minimal and can misalign reordered
// content; UnifiedDiff is the drop-in alternative when minimality matters.
type SimpleDiff struct{}

func (SimpleDiff) ComputeDiff(oldLines, newLines []string) []string {
	var result []string

	i, j := 0, 0
	for i < len(oldLines) || j < len(newLines) {
		switch {
		case i < len(oldLines) && j < len(newLines) && oldLines[i] == newLines[j]:
			result = append(result, " "+oldLines[i])
			i++
			j++
		case j >= len(newLines) || (i < len(oldLines) && oldLines[i] < newLines[j]):
			result = append(result, "-"+oldLines[i])
			i++
		default:
			result = append(result, "+"+newLines[j])
			j++
		}
	}

	return result
}

// UnifiedDiff computes a minimal-edit diff via go-difflib's sequence
// matcher, mapped onto the same annotated-line contract as SimpleDiff.
type UnifiedDiff struct{}

func (UnifiedDiff) ComputeDiff(oldLines, newLines []string) []string {
	matcher := difflib.NewMatcher(oldLines, newLines)

	var result []string
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range oldLines[op.I1:op.I2] {
				result = append(result, " "+line)
			}
		case 'd':
			for _, line := range oldLines[op.I1:op.I2] {
				result = append(result, "-"+line)
			}
		case 'i':
			for _, line := range newLines[op.J1:op.J2] {
				result = append(result, "+"+line)
			}
		case 'r':
			for _, line := range oldLines[op.I1:op.I2] {
				result = append(result, "-"+line)
			}
			for _, line := range newLines[op.J1:op.J2] {
				result = append(result, "+"+line)
			}
		}
	}

	return result
}
