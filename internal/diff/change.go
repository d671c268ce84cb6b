package diff

// ChangeType classifies the relationship between two file snapshots.
type ChangeType string

const (
	Added     ChangeType = "added"
	Removed   ChangeType = "removed"
	Modified  ChangeType = "modified"
	Unchanged ChangeType = "unchanged"
)

// Change is the result of comparing two file snapshots of the same path.
// Unchanged holds iff both hashes are equal (or both sides are absent);
// Added and Removed cover the one-sided cases.
type Change struct {
	Type    ChangeType `json:"type"`
	Path    string     `json:"path"`
	OldHash string     `json:"old_hash,omitempty"`
	NewHash string     `json:"new_hash,omitempty"`
}
