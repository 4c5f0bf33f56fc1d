package models

import (
	"time"
)

// Report is what the CLI hands to a formatter after one comparison
type Report struct {
	OperationID string
	Mode        Mode
	LeftPath    string
	RightPath   string
	LeftSize    int64
	RightSize   int64

	// Detail is the engine sub-mode (granularity or file compare mode)
	Detail string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Result ComparisonResult

	// Segments is only set for text comparisons
	Segments []Segment

	// Differences lists mismatched fields in file metadata mode
	Differences []DifferenceType

	// MaskPath is only set for image comparisons written to disk
	MaskPath string

	// Error holds the failure message when Status is StatusFailed
	Error string

	Status Status
}

// Status represents the overall result
type Status string

const (
	// StatusIdentical indicates no differences were found
	StatusIdentical Status = "identical"
	// StatusDifferent indicates at least one difference
	StatusDifferent Status = "different"
	// StatusFailed indicates the comparison could not be performed
	StatusFailed Status = "failed"
)

// StatusFor derives the status of a successful comparison
func StatusFor(r *ComparisonResult) Status {
	if r.Identical() {
		return StatusIdentical
	}
	return StatusDifferent
}

// ExitCode returns the process exit code for the status, in the style of diff(1)
func (s Status) ExitCode() int {
	switch s {
	case StatusIdentical:
		return 0
	case StatusDifferent:
		return 1
	default:
		return 2
	}
}
