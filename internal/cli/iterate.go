package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/audit"
	"github.com/svetzal/hone/internal/display"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/ghissue"
	"github.com/svetzal/hone/internal/ghiterate"
	"github.com/svetzal/hone/internal/honeconfig"
	"github.com/svetzal/hone/internal/iterate"
)

var (
	iterMaxRetries        int
	iterSkipGates         bool
	iterSkipCharter       bool
	iterSkipTriage        bool
	iterMode              string
	iterProposals         int
	iterSeverityThreshold int
	iterMinCharterLength  int
	iterAssessModel       string
	iterPlanModel         string
	iterExecuteModel      string
	iterJSON              bool
)

var iterateCmd = &cobra.Command{
	Use:   "iterate <agent> <folder>",
	Short: "Run one assess/plan/execute/verify iteration against a project",
	Long: `Iterate assesses a project against an agent's engineering principles,
plans a correction, executes it, and verifies the result against the
project's quality gates, retrying execution on gate failure.

With --mode github, iterate instead drives the three-phase GitHub
approval flow: close issues the owner thumbed down, execute issues the
owner thumbed up, then open --proposals new improvement issues for
review.`,
	Args: cobra.ExactArgs(2),
	RunE: runIterate,
}

func init() {
	iterateCmd.Flags().IntVar(&iterMaxRetries, "max-retries", 0, "max retry attempts after a gate failure (default: from config)")
	iterateCmd.Flags().BoolVar(&iterSkipGates, "skip-gates", false, "skip quality gate resolution and verification")
	iterateCmd.Flags().BoolVar(&iterSkipCharter, "skip-charter", false, "skip the intent-documentation sufficiency check")
	iterateCmd.Flags().BoolVar(&iterSkipTriage, "skip-triage", false, "skip busy-work triage filtering")
	iterateCmd.Flags().StringVar(&iterMode, "mode", "", "local or github (default: from config)")
	iterateCmd.Flags().IntVar(&iterProposals, "proposals", 0, "number of new issues to propose (github mode only)")
	iterateCmd.Flags().IntVar(&iterSeverityThreshold, "severity-threshold", 0, "minimum severity (1-5) to accept past triage (default: from config)")
	iterateCmd.Flags().IntVar(&iterMinCharterLength, "min-charter-length", 0, "minimum charter source length to pass the charter check (default: from config)")
	iterateCmd.Flags().StringVar(&iterAssessModel, "assess-model", "", "model for the assess stage (default: from config)")
	iterateCmd.Flags().StringVar(&iterPlanModel, "plan-model", "", "model for the plan stage (default: from config)")
	iterateCmd.Flags().StringVar(&iterExecuteModel, "execute-model", "", "model for the execute stage (default: from config)")
	iterateCmd.Flags().BoolVar(&iterJSON, "json", false, "emit a single JSON result document on stdout")
	rootCmd.AddCommand(iterateCmd)
}

func runIterate(cmd *cobra.Command, args []string) error {
	agentName, projectDir := args[0], args[1]
	ctx := context.Background()

	cfg, err := honeconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyIterateFlagOverrides(cmd, cfg)

	registry := assistant.NewRegistry()
	info, ok, err := registry.Resolve(ctx, agentName)
	if err != nil {
		return fmt.Errorf("resolving agent %q: %w", agentName, err)
	}
	// Agent existence is checked before the --proposals/mode conflict,
	// per §9's open question: when both fail, the user sees this error.
	if !ok {
		exitError(fmt.Sprintf("unknown agent %q", agentName))
	}
	agentText, err := registry.ReadContents(info)
	if err != nil {
		return fmt.Errorf("reading agent %q: %w", agentName, err)
	}

	if cfg.Mode != "github" && cmd.Flags().Changed("proposals") {
		exitError("--proposals is only valid with --mode github")
	}

	disp := display.NewWithOptions(noColor)
	invoker := assistant.NewInvoker("claude", projectDir)
	gatesResolver := &gate.Resolver{Caller: gateCallerAdapter{invoker: invoker, allowedTools: cfg.ReadOnlyTools}, Model: cfg.Models.Gates}
	gatesRunner := &gate.Runner{Timeout: time.Duration(cfg.GateTimeoutMs) * time.Millisecond}

	if cfg.Mode == "github" {
		return runIterateGitHub(ctx, disp, invoker, gatesResolver, gatesRunner, cfg, agentName, agentText, projectDir)
	}
	return runIterateLocal(ctx, disp, invoker, gatesResolver, gatesRunner, cfg, agentName, agentText, projectDir)
}

// applyIterateFlagOverrides layers explicitly-set flags over the
// loaded config, per §6's "defaults < file < flags" order.
func applyIterateFlagOverrides(cmd *cobra.Command, cfg *honeconfig.Config) {
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = iterMaxRetries
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = iterMode
	}
	if cmd.Flags().Changed("severity-threshold") {
		cfg.SeverityThreshold = iterSeverityThreshold
	}
	if cmd.Flags().Changed("min-charter-length") {
		cfg.MinCharterLength = iterMinCharterLength
	}
	if cmd.Flags().Changed("assess-model") {
		cfg.Models.Assess = iterAssessModel
	}
	if cmd.Flags().Changed("plan-model") {
		cfg.Models.Plan = iterPlanModel
	}
	if cmd.Flags().Changed("execute-model") {
		cfg.Models.Execute = iterExecuteModel
	}
}

func runIterateLocal(ctx context.Context, disp *display.Display, invoker *assistant.Invoker,
	gatesResolver *gate.Resolver, gatesRunner *gate.Runner, cfg *honeconfig.Config,
	agentName, agentText, projectDir string) error {

	eng := &iterate.Engine{
		Assistant: iterate.InvokerAdapter{Invoker: invoker},
		Charter:   iterate.CharterAdapter{MinLength: cfg.MinCharterLength},
		Gates:     iterate.GateResolverAdapter{Resolver: gatesResolver},
		Runner:    iterate.GateRunnerAdapter{Runner: gatesRunner},
		Audit:     audit.Sink{},
	}

	opts := iterate.Options{
		Agent:             agentName,
		AgentText:         agentText,
		ProjectDir:        projectDir,
		Models:            iterate.StageModels{Assess: cfg.Models.Assess, Name: cfg.Models.Name, Plan: cfg.Models.Plan, Execute: cfg.Models.Execute, Gates: cfg.Models.Gates, Triage: cfg.Models.Triage},
		MaxRetries:        cfg.MaxRetries,
		GateTimeoutMs:     cfg.GateTimeoutMs,
		SkipGates:         iterSkipGates,
		SkipCharter:       iterSkipCharter,
		SkipTriage:        iterSkipTriage,
		SeverityThreshold: cfg.SeverityThreshold,
		MinCharterLength:  cfg.MinCharterLength,
		ReadOnlyTools:     cfg.ReadOnlyTools,
		AuditDir:          cfg.AuditDir,
	}

	if !iterJSON {
		disp.IterationHeader(agentName, projectDir, cfg.ReadOnlyTools)
	}

	result, err := eng.Execute(ctx, opts)
	if err != nil {
		if !iterJSON {
			disp.Error(err.Error())
		}
		return err
	}

	if iterJSON {
		return emitJSON(result)
	}
	reportLocalResult(disp, result)
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func runIterateGitHub(ctx context.Context, disp *display.Display, invoker *assistant.Invoker,
	gatesResolver *gate.Resolver, gatesRunner *gate.Runner, cfg *honeconfig.Config,
	agentName, agentText, projectDir string) error {

	eng := &ghiterate.Engine{
		Issues:            ghissue.NewClient(""),
		ReadOnlyAssistant: ghiterate.InvokerAdapter{Invoker: invoker, ReadOnly: true, AllowedTools: cfg.ReadOnlyTools},
		WriteAssistant:    ghiterate.InvokerAdapter{Invoker: invoker, ReadOnly: false},
		Charter:           ghiterate.CharterAdapter{MinLength: cfg.MinCharterLength},
		Gates:             ghiterate.GateResolverAdapter{Resolver: gatesResolver},
		Runner:            ghiterate.GateRunnerAdapter{Runner: gatesRunner},
		Audit:             audit.Sink{},
	}

	opts := ghiterate.Options{
		Agent:             agentName,
		AgentText:         agentText,
		ProjectDir:        projectDir,
		Proposals:         iterProposals,
		Models:            ghiterate.StageModels{Assess: cfg.Models.Assess, Name: cfg.Models.Name, Plan: cfg.Models.Plan, Execute: cfg.Models.Execute, Triage: cfg.Models.Triage},
		MaxRetries:        cfg.MaxRetries,
		SkipGates:         iterSkipGates,
		SkipTriage:        iterSkipTriage,
		SeverityThreshold: cfg.SeverityThreshold,
		MinCharterLength:  cfg.MinCharterLength,
		ReadOnlyTools:     cfg.ReadOnlyTools,
		AuditDir:          cfg.AuditDir,
	}

	result, err := eng.Run(ctx, opts)
	if err != nil {
		if !iterJSON {
			disp.Error(err.Error())
		}
		return err
	}

	if iterJSON {
		return emitJSON(result)
	}

	disp.GitHubSummary(result.Closed, result.Proposed, result.SkippedTriage, len(result.Executed))
	if !result.CharterCheck.Passed {
		disp.Error("charter check failed: phase 3 (propose) was skipped")
	}
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func reportLocalResult(disp *display.Display, result *iterate.Result) {
	if result.SkippedReason != "" {
		disp.Skip(result.SkippedReason)
		return
	}
	disp.StageOutput("name", result.Name)
	if !result.TriageResult.Accepted {
		disp.Skip("Triage rejected: " + result.TriageResult.Reason)
		return
	}
	disp.GatesSummary(result.GatesResult)
	if result.Success {
		disp.Success(fmt.Sprintf("%s completed after %d retries", result.Name, result.Retries))
	} else {
		disp.Error(fmt.Sprintf("%s failed after %d retries", result.Name, result.Retries))
	}
}

func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// gateCallerAdapter adapts *assistant.Invoker to gate.Caller, always
// invoking read-only since gate extraction never writes.
type gateCallerAdapter struct {
	invoker      *assistant.Invoker
	allowedTools []string
}

func (a gateCallerAdapter) Invoke(ctx context.Context, agentArg, model, prompt string) (string, error) {
	return a.invoker.Invoke(ctx, assistant.Stage{Agent: agentArg, Model: model, Prompt: prompt, ReadOnly: true, AllowedTools: a.allowedTools})
}
