package output

import (
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct{}

// JSONReportData is the document written for one comparison
type JSONReportData struct {
	OperationID string                  `json:"operation_id"`
	Mode        string                  `json:"mode"`
	Detail      string                  `json:"detail,omitempty"`
	Left        JSONInputData           `json:"left"`
	Right       JSONInputData           `json:"right"`
	Status      string                  `json:"status"`
	StartTime   time.Time               `json:"start_time"`
	Duration    string                  `json:"duration"`
	DurationMs  int64                   `json:"duration_ms"`
	Result      models.ComparisonResult `json:"result"`
	Differences []models.DifferenceType `json:"differences,omitempty"`
	Segments    []models.Segment        `json:"segments,omitempty"`
	MaskPath    string                  `json:"mask_path,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// JSONInputData describes one side of the comparison
type JSONInputData struct {
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

// JSONErrorData is written when a comparison fails
type JSONErrorData struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Report writes the report as an indented JSON document
func (f *JSONFormatter) Report(w io.Writer, report *models.Report) error {
	if w == nil {
		w = io.Discard
	}

	data := JSONReportData{
		OperationID: report.OperationID,
		Mode:        string(report.Mode),
		Detail:      report.Detail,
		Left:        JSONInputData{Path: report.LeftPath, Size: report.LeftSize},
		Right:       JSONInputData{Path: report.RightPath, Size: report.RightSize},
		Status:      string(report.Status),
		StartTime:   report.StartTime,
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Result:      report.Result,
		Differences: report.Differences,
		Segments:    report.Segments,
		MaskPath:    report.MaskPath,
		Error:       report.Error,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error writes a failure document carrying the error kind when known
func (f *JSONFormatter) Error(w io.Writer, err error) error {
	if w == nil {
		w = io.Discard
	}

	data := JSONErrorData{
		Status:  string(models.StatusFailed),
		Kind:    string(compare.KindOf(err)),
		Message: err.Error(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
