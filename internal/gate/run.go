package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/svetzal/hone/internal/procrun"
)

const truncateKeepLines = 200

// Runner executes a resolved gate list sequentially, in input order.
type Runner struct {
	Timeout time.Duration
}

// Run executes each gate via `sh -c <command>` in projectDir under the
// configured timeout, classifies pass/fail by exit code, and aggregates
// the results. Gates run sequentially; output ordering mirrors input.
func (r *Runner) Run(ctx context.Context, projectDir string, gates []Definition) RunResult {
	run := RunResult{AllPassed: true, RequiredPassed: true}

	for _, g := range gates {
		res, err := procrun.Run(ctx, []string{"sh", "-c", g.Command}, projectDir, r.Timeout)

		result := Result{
			Name:     g.Name,
			Command:  g.Command,
			Required: g.Required,
		}

		if err != nil {
			// Spawn error: treated as a failed gate, exitCode stays nil.
			result.Passed = false
			result.Output = truncateOutput(err.Error())
		} else {
			result.ExitCode = res.ExitCode
			result.Passed = res.ExitCode != nil && *res.ExitCode == 0
			result.Output = truncateOutput(res.Stdout + res.Stderr)
		}

		if !result.Passed {
			run.AllPassed = false
			if result.Required {
				run.RequiredPassed = false
			}
		}

		run.Results = append(run.Results, result)
	}

	return run
}

// truncateOutput keeps the last 200 lines, preserving the error tail the
// retry prompt needs, prefixed with a count of how many lines were cut.
func truncateOutput(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) <= truncateKeepLines {
		return output
	}
	cut := len(lines) - truncateKeepLines
	kept := lines[cut:]
	return fmt.Sprintf("... (%d lines truncated)\n%s", cut, strings.Join(kept, "\n"))
}
