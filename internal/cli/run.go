package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/config"
	"github.com/sdejongh/diffdeck/pkg/logging"
	"github.com/sdejongh/diffdeck/pkg/models"
	"github.com/sdejongh/diffdeck/pkg/output"
)

// StatusError carries a comparison outcome out of a command so main can map
// it to an exit code. When Err is nil the outcome was already reported.
type StatusError struct {
	Status models.Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Status)
}

func (e *StatusError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status.ExitCode()
	}
	return models.StatusFailed.ExitCode()
}

// Reported reports whether err was already written by a formatter
func Reported(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Err == nil
}

// session bundles what every comparison command needs once config is loaded
type session struct {
	cmd       *cobra.Command
	cfg       *config.Config
	formatter output.Formatter
	logger    logging.Logger
	base      logging.Logger
	operation *models.Operation
}

// newSession loads config and sets up output and logging for one comparison
func newSession(cmd *cobra.Command, mode models.Mode, left, right string, bindings map[string]string) (*session, error) {
	if err := validateInputs(left, right); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	operation, err := createOperation(mode, left, right)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}

	formatter, err := output.New(cfg.Output.Format, useColor(cmd.OutOrStdout(), cfg))
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &session{
		cmd:       cmd,
		cfg:       cfg,
		formatter: formatter,
		logger:    logger.WithFields(logging.Fields{"operation_id": operation.ID, "mode": string(mode)}),
		base:      logger,
		operation: operation,
	}, nil
}

// context returns the command context, never nil
func (s *session) ctx() context.Context {
	if ctx := s.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// progress returns where progress bars go, or nil when they are disabled
func (s *session) progress() io.Writer {
	w := s.cmd.ErrOrStderr()
	if !s.cfg.Output.Progress || s.cfg.Output.Quiet || !isTerminal(w) {
		return nil
	}
	return w
}

// newReport starts a report for the session's operation
func (s *session) newReport(detail string) *models.Report {
	return &models.Report{
		OperationID: s.operation.ID,
		Mode:        s.operation.Mode,
		LeftPath:    s.operation.LeftPath,
		RightPath:   s.operation.RightPath,
		Detail:      detail,
		StartTime:   time.Now(),
	}
}

// finish stamps the report, writes it and returns the status as an error
// for anything other than identical inputs
func (s *session) finish(report *models.Report) error {
	defer s.base.Close()

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	report.Status = models.StatusFor(&report.Result)

	s.logger.Info(s.ctx(), "comparison complete", logging.Fields{
		"status":      string(report.Status),
		"detail":      report.Detail,
		"added":       report.Result.Added,
		"removed":     report.Result.Removed,
		"modified":    report.Result.Modified,
		"total":       report.Result.Total,
		"duration_ms": report.Duration.Milliseconds(),
	})

	if !s.cfg.Output.Quiet {
		if err := s.formatter.Report(s.cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if report.Status == models.StatusIdentical {
		return nil
	}
	return &StatusError{Status: report.Status}
}

// fail reports an engine or input error and returns it as a failed status
func (s *session) fail(err error) error {
	defer s.base.Close()

	s.logger.Error(s.ctx(), "comparison failed", err, logging.Fields{
		"kind": string(compare.KindOf(err)),
	})

	w := s.cmd.ErrOrStderr()
	if s.formatter.Name() == "json" {
		w = s.cmd.OutOrStdout()
	}
	if ferr := s.formatter.Error(w, err); ferr != nil {
		return &StatusError{Status: models.StatusFailed, Err: err}
	}
	return &StatusError{Status: models.StatusFailed}
}

// useColor decides whether the human formatter may emit escape codes
func useColor(w io.Writer, cfg *config.Config) bool {
	return cfg.Output.Color && !color.NoColor && isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
