package compare

import (
	"github.com/dustin/go-humanize"

	"github.com/sdejongh/diffdeck/pkg/models"
)

// DefaultMaxFileSize is the largest input the file engine accepts
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// FileOptions configures one file comparison
type FileOptions struct {
	Mode    models.FileCompareMode
	MaxSize int64
}

// DefaultFileOptions returns binary mode with the 100 MB cap
func DefaultFileOptions() FileOptions {
	return FileOptions{Mode: models.FileBinary, MaxSize: DefaultMaxFileSize}
}

// FileEngine compares two file buffers in metadata, text or binary mode
type FileEngine struct {
	progressReport func(current, total int64) // Optional progress callback
}

// NewFileEngine creates a file engine
func NewFileEngine() *FileEngine {
	return &FileEngine{}
}

// SetProgressCallback sets the progress reporting callback used by binary mode
func (e *FileEngine) SetProgressCallback(callback func(current, total int64)) {
	e.progressReport = callback
}

// Compare runs the comparison selected by opts.Mode
func (e *FileEngine) Compare(left, right *models.FileBuffer, opts FileOptions) (*models.ComparisonResult, error) {
	if left == nil || right == nil {
		return nil, newError(KindInputMissing, "both files are required")
	}

	if opts.Mode != models.FileMetadata {
		if err := CheckSize(left, opts.MaxSize); err != nil {
			return nil, err
		}
		if err := CheckSize(right, opts.MaxSize); err != nil {
			return nil, err
		}
	}

	switch opts.Mode {
	case models.FileMetadata:
		return compareMetadata(left, right), nil
	case models.FileText:
		return compareLines(left, right)
	case models.FileBinary:
		return e.compareBytes(left, right)
	default:
		return nil, newError(KindInvalidOption, "unknown file comparison mode %q (valid: metadata, text, binary)", opts.Mode)
	}
}

// CheckSize rejects buffers larger than maxSize. A maxSize of zero disables the check.
func CheckSize(b *models.FileBuffer, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}
	size := max(b.Size, int64(len(b.Data)))
	if size > maxSize {
		return newError(KindSizeLimit, "%s is %s, limit is %s",
			displayName(b), humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxSize)))
	}
	return nil
}

func displayName(b *models.FileBuffer) string {
	if b.Name == "" {
		return "input"
	}
	return b.Name
}
