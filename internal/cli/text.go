package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/input"
	"github.com/sdejongh/diffdeck/pkg/models"
)

// TextFlags holds text command flags
type TextFlags struct {
	Granularity      string
	IgnoreCase       bool
	IgnoreWhitespace bool
	LeftText         string
	RightText        string
}

var textFlags TextFlags

var textBindings = map[string]string{
	"text.granularity":       "granularity",
	"text.ignore_case":       "ignore-case",
	"text.ignore_whitespace": "ignore-whitespace",
	"file.max_size":          "max-size",
}

// NewTextCommand creates the text command
func NewTextCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text [LEFT] [RIGHT]",
		Short: "Diff two texts by lines, words or characters",
		Long: `Compare two texts and print the added, removed and unchanged segments.
Inputs are files, "-" for stdin on one side, or literals via --left-text and --right-text.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runText,
	}

	cmd.Flags().StringVarP(&textFlags.Granularity, "granularity", "g", "lines", "token unit: lines, words, characters")
	cmd.Flags().BoolVarP(&textFlags.IgnoreCase, "ignore-case", "i", false, "lower-case both inputs before diffing")
	cmd.Flags().BoolVarP(&textFlags.IgnoreWhitespace, "ignore-whitespace", "w", false, "collapse whitespace runs and trim both inputs")
	cmd.Flags().StringVar(&textFlags.LeftText, "left-text", "", "use this literal as the left input")
	cmd.Flags().StringVar(&textFlags.RightText, "right-text", "", "use this literal as the right input")
	cmd.Flags().String("max-size", "", "reject inputs larger than this (e.g. \"10MB\")")

	return cmd
}

func runText(cmd *cobra.Command, args []string) error {
	left, right, err := textSides(cmd, args)
	if err != nil {
		return err
	}

	s, err := newSession(cmd, models.ModeText, left.label, right.label, textBindings)
	if err != nil {
		return err
	}

	report := s.newReport(string(s.cfg.Text.Granularity))

	leftContent, err := s.loadText(left)
	if err != nil {
		return s.fail(err)
	}
	rightContent, err := s.loadText(right)
	if err != nil {
		return s.fail(err)
	}
	report.LeftSize = int64(len(leftContent))
	report.RightSize = int64(len(rightContent))

	s.logger.Debug(s.ctx(), "diffing text", nil)
	diff, err := compare.NewTextEngine().Compare(leftContent, rightContent, s.cfg.TextOptions())
	if err != nil {
		return s.fail(err)
	}

	report.Result = diff.Result
	report.Segments = diff.Segments
	return s.finish(report)
}

// textSide is one input of the text command: a literal or a path
type textSide struct {
	label   string
	literal *string
}

// textSides pairs literal flags and positional arguments, left first
func textSides(cmd *cobra.Command, args []string) (textSide, textSide, error) {
	sides := [2]textSide{}
	literals := [2]struct {
		flag  string
		value *string
	}{{"left-text", &textFlags.LeftText}, {"right-text", &textFlags.RightText}}

	next := 0
	for i, lit := range literals {
		if cmd.Flags().Changed(lit.flag) {
			sides[i] = textSide{label: "(" + lit.flag + ")", literal: lit.value}
			continue
		}
		if next >= len(args) {
			return textSide{}, textSide{}, fmt.Errorf("missing %s input: pass a path or --%s", []string{"left", "right"}[i], lit.flag)
		}
		sides[i] = textSide{label: args[next]}
		next++
	}
	if next != len(args) {
		return textSide{}, textSide{}, fmt.Errorf("too many arguments: both sides are already given")
	}

	return sides[0], sides[1], nil
}

// loadText returns the content of side, rejecting binary files
func (s *session) loadText(side textSide) (string, error) {
	if side.literal != nil {
		return *side.literal, nil
	}

	opts := input.Options{MaxSize: s.cfg.File.MaxSize, Progress: s.progress()}

	var buf *models.FileBuffer
	var err error
	if side.label == "-" {
		buf, err = input.LoadReader("stdin", s.cmd.InOrStdin(), opts)
	} else {
		buf, err = input.Load(side.label, opts)
	}
	if err != nil {
		return "", err
	}

	if !buf.IsText() {
		return "", &compare.Error{
			Kind:    compare.KindTypeMismatch,
			Message: fmt.Sprintf("%s is not text (%s)", buf.Name, buf.MimeType),
		}
	}
	return buf.Text(), nil
}
