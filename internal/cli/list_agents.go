package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svetzal/hone/internal/assistant"
)

var listAgentsCmd = &cobra.Command{
	Use:   "list-agents",
	Short: "List agent personas available under ~/.claude/agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := assistant.NewRegistry()
		infos, err := registry.List(context.Background())
		if err != nil {
			return fmt.Errorf("listing agents: %w", err)
		}
		if len(infos) == 0 {
			fmt.Println("No agents found.")
			return nil
		}
		for _, info := range infos {
			if info.Description != "" {
				fmt.Printf("%-30s %s\n", info.Name, info.Description)
			} else {
				fmt.Printf("%-30s %s\n", info.Name, info.Path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listAgentsCmd)
}
