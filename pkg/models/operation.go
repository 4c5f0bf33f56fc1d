package models

import (
	"time"
)

// Mode is the kind of artifact being compared
type Mode string

const (
	ModeText   Mode = "text"
	ModeImage  Mode = "image"
	ModeFile   Mode = "file"
	ModeExcel  Mode = "excel"
	ModePDF    Mode = "pdf"
	ModeFolder Mode = "folder"
)

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeText, ModeImage, ModeFile, ModeExcel, ModePDF, ModeFolder:
		return true
	}
	return false
}

// Granularity is the token unit used by the text engine
type Granularity string

const (
	// GranularityLines diffs line by line
	GranularityLines Granularity = "lines"
	// GranularityWords diffs word by word
	GranularityWords Granularity = "words"
	// GranularityCharacters diffs character by character
	GranularityCharacters Granularity = "characters"
)

// FileCompareMode selects how the file engine compares two buffers
type FileCompareMode string

const (
	// FileMetadata compares name, size and modification time only
	FileMetadata FileCompareMode = "metadata"
	// FileText compares line by line at matching positions
	FileText FileCompareMode = "text"
	// FileBinary compares byte by byte
	FileBinary FileCompareMode = "binary"
)

// Operation describes one comparison invocation
type Operation struct {
	ID        string
	Mode      Mode
	LeftPath  string
	RightPath string
	CreatedAt time.Time
}

// Validate checks if the operation is usable
func (op *Operation) Validate() error {
	if !op.Mode.Valid() {
		return &ValidationError{Field: "Mode", Message: "unknown comparison mode: " + string(op.Mode)}
	}
	if op.LeftPath == "" {
		return &ValidationError{Field: "LeftPath", Message: "left input is required"}
	}
	if op.RightPath == "" {
		return &ValidationError{Field: "RightPath", Message: "right input is required"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
