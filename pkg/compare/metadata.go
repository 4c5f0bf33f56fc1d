package compare

import (
	"github.com/sdejongh/diffdeck/pkg/models"
)

// metadataFields is the number of fields metadata mode compares
const metadataFields = 3

// compareMetadata compares name, size and modification time. The counters
// are per-field mismatch flags: Added for name, Removed for size and
// Modified for modification time. Unchanged is always zero.
func compareMetadata(left, right *models.FileBuffer) *models.ComparisonResult {
	result := &models.ComparisonResult{Total: metadataFields, FirstDifference: -1}
	if left.Name != right.Name {
		result.Added = 1
	}
	if left.Size != right.Size {
		result.Removed = 1
	}
	if left.LastModified != right.LastModified {
		result.Modified = 1
	}
	return result
}

// MetadataDifferences lists which fields a metadata comparison flagged
func MetadataDifferences(r *models.ComparisonResult) []models.DifferenceType {
	var diffs []models.DifferenceType
	if r.Added > 0 {
		diffs = append(diffs, models.DiffName)
	}
	if r.Removed > 0 {
		diffs = append(diffs, models.DiffSize)
	}
	if r.Modified > 0 {
		diffs = append(diffs, models.DiffModTime)
	}
	return diffs
}
