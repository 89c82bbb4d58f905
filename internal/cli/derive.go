package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/honeconfig"
)

var deriveCmd = &cobra.Command{
	Use:   "derive <agent> <folder>",
	Short: "Generate a charter document for a project from its source",
	Long: `Derive runs a single read-only assistant call asking the named agent
to write a CHARTER.md describing the project's purpose and guidance,
and prints the result to stdout. It has no retry loop, no gates, and no
triage — a one-shot generator, unlike iterate.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentName, projectDir := args[0], args[1]
		ctx := context.Background()

		cfg, err := honeconfig.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		registry := assistant.NewRegistry()
		info, ok, err := registry.Resolve(ctx, agentName)
		if err != nil {
			return fmt.Errorf("resolving agent %q: %w", agentName, err)
		}
		if !ok {
			exitError(fmt.Sprintf("unknown agent %q", agentName))
		}

		invoker := assistant.NewInvoker("claude", projectDir)
		prompt := fmt.Sprintf("Write a CHARTER.md for the project in %s describing its purpose, "+
			"scope, and guidance for future contributors.", projectDir)
		out, err := invoker.Invoke(ctx, assistant.Stage{Agent: info.Name, Model: cfg.Models.Derive, Prompt: prompt, ReadOnly: true, AllowedTools: cfg.ReadOnlyTools})
		if err != nil {
			return fmt.Errorf("derive stage: %w", err)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}
