// Package assistant builds the argument vector for, and invokes, the
// external LLM-driven assistant CLI, and enumerates the agent
// definitions that supply it with engineering principles.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/svetzal/hone/internal/procrun"
)

// Stage describes one call into the assistant.
type Stage struct {
	Agent        string   // engineering-principles persona; omitted from argv when empty
	Model        string
	Prompt       string
	ReadOnly     bool     // true ⇒ pass --allowedTools (when AllowedTools is non-empty) and never write
	AllowedTools []string // only used when ReadOnly
}

// Invoker calls the assistant binary and returns its trimmed stdout.
type Invoker struct {
	Binary  string
	WorkDir string
}

// NewInvoker builds an Invoker for the given assistant binary and
// target project directory.
func NewInvoker(binary, workDir string) *Invoker {
	if binary == "" {
		binary = "claude"
	}
	return &Invoker{Binary: binary, WorkDir: workDir}
}

// BuildArgs returns the canonical argument vector for a stage, in the
// exact order assistant tests pattern-match on:
//
//	[--agent, A]?  [--model, M, --print, -p, PROMPT]  [--allowedTools, TOOLS]?  --dangerously-skip-permissions
func (i *Invoker) BuildArgs(stage Stage) []string {
	var args []string

	if stage.Agent != "" {
		args = append(args, "--agent", stage.Agent)
	}

	args = append(args, "--model", stage.Model, "--print", "-p", stage.Prompt)

	if stage.ReadOnly && len(stage.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(stage.AllowedTools, ","))
	}

	args = append(args, "--dangerously-skip-permissions")

	return args
}

// Invoke runs the assistant for a stage and returns its trimmed stdout.
// A non-zero exit is fatal: the error carries both stderr and stdout so
// the caller can surface a useful diagnostic.
func (i *Invoker) Invoke(ctx context.Context, stage Stage) (string, error) {
	argv := append([]string{i.Binary}, i.BuildArgs(stage)...)

	res, err := procrun.Run(ctx, argv, i.WorkDir, 0)
	if err != nil {
		return "", fmt.Errorf("assistant: spawning %s: %w", i.Binary, err)
	}

	if res.ExitCode == nil || *res.ExitCode != 0 {
		return "", fmt.Errorf("assistant: %s exited non-zero (code=%v): stderr=%q stdout=%q",
			i.Binary, res.ExitCode, strings.TrimSpace(res.Stderr), strings.TrimSpace(res.Stdout))
	}

	return strings.TrimSpace(res.Stdout), nil
}
