package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/diffdeck/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Report writes the outcome of one comparison
	Report(w io.Writer, report *models.Report) error

	// Error reports a comparison that could not be performed
	Error(w io.Writer, err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter registered under name.
// color only affects the human formatter.
func New(name string, color bool) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(color), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}
