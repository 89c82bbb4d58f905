// Package cli wires Hone's configuration, assistant invoker, quality
// gates, charter checker, audit sink, and local/GitHub iteration
// engines into a cobra command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set by goreleaser via ldflags.
	Version = "dev"
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "hone",
	Short: "Deterministic, gate-verified autonomous code improvement",
	Long: `Hone wraps an assistant CLI in a deterministic assess/plan/execute/verify
loop, with quality gates, busy-work triage, and an optional
GitHub-issue approval workflow.

  hone iterate <agent> <folder>          Run one local iteration
  hone iterate <agent> <folder> --mode github --proposals 3
                                          Propose, and execute approved, issues
  hone list-agents                       List available agent personas
  hone history <folder>                  Show past iterations from the audit trail
  hone config                            Show or edit the user configuration`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SetVersionTemplate(fmt.Sprintf("hone version %s\n", Version))
}

func exitError(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}
