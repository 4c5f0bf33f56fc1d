package models

// ComparisonResult is the five-field tally produced by every engine.
// The meaning of each counter depends on the mode that produced it:
// text counts segments, image counts pixels, binary counts bytes, and
// metadata mode uses Added/Removed/Modified as per-field mismatch flags.
type ComparisonResult struct {
	Added     uint64 `json:"added" yaml:"added"`
	Removed   uint64 `json:"removed" yaml:"removed"`
	Modified  uint64 `json:"modified" yaml:"modified"`
	Unchanged uint64 `json:"unchanged" yaml:"unchanged"`
	Total     uint64 `json:"total" yaml:"total"`

	// FirstDifference is the byte offset (binary), zero-based line index
	// (text file mode) or segment index (text engine) of the first
	// difference, or -1 when nothing differs
	FirstDifference int64 `json:"first_difference" yaml:"first_difference"`
}

// Identical reports whether the comparison found no differences
func (r *ComparisonResult) Identical() bool {
	return r.Added == 0 && r.Removed == 0 && r.Modified == 0
}

// SegmentKind tags a text diff segment
type SegmentKind string

const (
	// SegmentAdded is present only in the right input
	SegmentAdded SegmentKind = "added"
	// SegmentRemoved is present only in the left input
	SegmentRemoved SegmentKind = "removed"
	// SegmentUnchanged is common to both inputs
	SegmentUnchanged SegmentKind = "unchanged"
)

// Segment is one contiguous run of tokens in a text diff
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Value string      `json:"value"`
	// Count is the number of tokens (lines, words or characters) in Value
	Count int `json:"count"`
}

// TextDiff holds text engine output: the ordered segments and their tally
type TextDiff struct {
	Segments []Segment       `json:"segments"`
	Result   ComparisonResult `json:"result"`
}

// DifferenceType categorizes why two files differ in metadata mode
type DifferenceType string

const (
	// DiffName indicates different file names
	DiffName DifferenceType = "name"
	// DiffSize indicates different file sizes
	DiffSize DifferenceType = "size"
	// DiffModTime indicates different modification times
	DiffModTime DifferenceType = "modtime"
)
