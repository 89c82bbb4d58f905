package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/svetzal/hone/internal/audit"
	"github.com/svetzal/hone/internal/honeconfig"
)

var historyCmd = &cobra.Command{
	Use:   "history <folder>",
	Short: "List past iterations recorded in a project's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := args[0]

		cfg, err := honeconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		entries, err := audit.ListIterations(filepath.Join(projectDir, cfg.AuditDir))
		if err != nil {
			return fmt.Errorf("listing audit trail: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No iterations recorded yet.")
			return nil
		}

		for _, e := range entries {
			when := time.Unix(0, e.ModTime).Format("2006-01-02 15:04:05")
			fmt.Printf("%s  %s  (%d file(s))\n", when, e.Name, len(e.Files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
