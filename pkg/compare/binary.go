package compare

import (
	"time"

	"github.com/sdejongh/diffdeck/pkg/models"
)

const (
	progressReportInterval = 50 * time.Millisecond
	progressReportBytes    = 64 * 1024 // 64KB
)

// compareBytes walks both buffers byte by byte. Bytes past the end of the
// shorter buffer are not mismatches; the length delta is reported separately
// in Added or Removed, and Total is the longer length.
func (e *FileEngine) compareBytes(left, right *models.FileBuffer) (*models.ComparisonResult, error) {
	if left.IsText() || right.IsText() {
		return nil, newError(KindTypeMismatch, "binary comparison requires raw bytes: %s is %s, %s is %s",
			displayName(left), left.Encoding, displayName(right), right.Encoding)
	}

	lb, rb := left.Data, right.Data
	n := min(len(lb), len(rb))

	result := &models.ComparisonResult{Total: uint64(max(len(lb), len(rb))), FirstDifference: -1}
	if len(rb) > len(lb) {
		result.Added = uint64(len(rb) - len(lb))
	} else {
		result.Removed = uint64(len(lb) - len(rb))
	}

	var lastReported int
	var lastReportTime time.Time

	for i := 0; i < n; i++ {
		if lb[i] != rb[i] {
			if result.FirstDifference < 0 {
				result.FirstDifference = int64(i)
			}
			result.Modified++
		}

		// Throttled progress reporting
		if e.progressReport != nil && i-lastReported >= progressReportBytes {
			if time.Since(lastReportTime) >= progressReportInterval {
				e.progressReport(int64(i), int64(n))
				lastReportTime = time.Now()
			}
			lastReported = i
		}
	}

	if e.progressReport != nil {
		e.progressReport(int64(n), int64(n))
	}

	if result.FirstDifference < 0 && len(lb) != len(rb) {
		result.FirstDifference = int64(n)
	}

	result.Unchanged = result.Total - result.Modified
	return result, nil
}
