package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the diffdeck command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diffdeck",
		Short: "Pairwise comparison of texts, images and files",
		Long: `diffdeck compares two artifacts and reports what was added, removed,
modified and left unchanged. It diffs text by lines, words or characters,
images pixel by pixel, and files byte by byte, line by line or by metadata.

Exit status is 0 when the inputs are identical, 1 when they differ and 2 on error.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewTextCommand())
	rootCmd.AddCommand(NewImageCommand())
	rootCmd.AddCommand(NewFileCommand())
	rootCmd.AddCommand(NewShareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
