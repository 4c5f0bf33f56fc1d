package compare

import (
	"strings"

	"github.com/sdejongh/diffdeck/pkg/models"
)

// compareLines walks both line sequences position by position. The shorter
// side is padded with empty lines, so an empty line is indistinguishable from
// a missing one.
func compareLines(left, right *models.FileBuffer) (*models.ComparisonResult, error) {
	if !left.IsText() || !right.IsText() {
		return nil, newError(KindTypeMismatch, "text comparison requires text input: %s is %s, %s is %s",
			displayName(left), left.Encoding, displayName(right), right.Encoding)
	}

	ll := strings.Split(left.Text(), "\n")
	rl := strings.Split(right.Text(), "\n")
	n := max(len(ll), len(rl))

	result := &models.ComparisonResult{Total: uint64(n), FirstDifference: -1}
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(ll) {
			l = ll[i]
		}
		if i < len(rl) {
			r = rl[i]
		}

		switch {
		case l == r:
			result.Unchanged++
			continue
		case l == "":
			result.Added++
		case r == "":
			result.Removed++
		default:
			result.Modified++
		}
		if result.FirstDifference < 0 {
			result.FirstDifference = int64(i)
		}
	}

	return result, nil
}
