// Package iterate implements Hone's local iteration engine (C11): the
// charter → assess → name → triage → plan → execute → verify pipeline
// with its bounded retry inner-loop.
package iterate

import (
	"context"
	"fmt"
	"time"

	"github.com/svetzal/hone/internal/assess"
	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/triage"
)

// Engine runs one iteration at a time, orchestrating its injected
// collaborators. Dependencies are modeled as explicit interfaces so
// production code wires real implementations and tests wire canned
// ones — see deps.go.
type Engine struct {
	Assistant AssistantCaller
	Charter   CharterChecker
	Gates     GateResolver
	Runner    GateRunner
	Audit     AuditSink

	// Now returns the current time in epoch milliseconds. Defaults to
	// time.Now when nil; overridable so the name-sanitizer fallback is
	// deterministic in tests.
	Now func() int64
}

type stageCaller struct {
	eng          *Engine
	agent        string
	readOnly     bool
	allowedTools []string
}

func (c stageCaller) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	if agent == "" {
		agent = c.agent
	}
	return c.eng.Assistant.Invoke(ctx, assistant.Stage{
		Agent:        agent,
		Model:        model,
		Prompt:       prompt,
		ReadOnly:     c.readOnly,
		AllowedTools: c.allowedTools,
	})
}

func (e *Engine) now() int64 {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UnixMilli()
}

// Execute runs one full iteration for opts and returns its Result.
//
// Stage ordering follows the spec's literal end-to-end scenarios, which
// place preflight before any assessment call: CharterCheck → Preflight
// → Assess → Name → Triage → SaveAssessment → Plan → Execute → Verify
// → bounded retry. See DESIGN.md for why this takes precedence over the
// abbreviated prose state list, which would put Preflight after Triage.
func (e *Engine) Execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if !opts.SkipCharter {
		check, err := e.Charter.Check(opts.ProjectDir)
		if err != nil {
			return nil, fmt.Errorf("iterate: charter check: %w", err)
		}
		result.CharterCheck = check
		if !check.Passed {
			result.Success = true
			result.SkippedReason = "Charter check failed: " + joinGuidance(check.Guidance)
			return result, nil
		}
	}

	var gates []gate.Definition
	if !opts.SkipGates {
		resolved, err := e.Gates.Resolve(ctx, opts.ProjectDir, opts.AgentText)
		if err != nil {
			return nil, fmt.Errorf("iterate: resolving gates: %w", err)
		}
		gates = resolved

		if len(gates) > 0 {
			preflight := e.Runner.Run(ctx, opts.ProjectDir, gates)
			if !preflight.RequiredPassed {
				result.GatesResult = preflight
				result.Success = false
				result.SkippedReason = "Preflight failed"
				return result, nil
			}
		}
	}

	assessCaller := stageCaller{eng: e, agent: opts.Agent, readOnly: true, allowedTools: opts.ReadOnlyTools}

	assessRaw, err := assessCaller.Invoke(ctx, opts.Agent, opts.Models.Assess, assessPrompt(opts.ProjectDir))
	if err != nil {
		return nil, fmt.Errorf("iterate: assess stage: %w", err)
	}
	structured := assess.Parse(assessRaw)
	result.StructuredAssessment = structured
	result.Assessment = assessRaw

	nameRaw, err := assessCaller.Invoke(ctx, opts.Agent, opts.Models.Name, namePrompt()+"\n\n"+assessRaw)
	if err != nil {
		return nil, fmt.Errorf("iterate: name stage: %w", err)
	}
	name := SanitizeName(nameRaw, e.now())
	result.Name = name

	var triageResult triage.Result
	if !opts.SkipTriage {
		triageResult, err = triage.Evaluate(ctx, assessCaller, opts.Agent, opts.Models.Triage, structured, opts.SeverityThreshold)
		if err != nil {
			return nil, fmt.Errorf("iterate: triage stage: %w", err)
		}
	} else {
		triageResult = triage.Result{Accepted: true, Severity: structured.Severity, ChangeType: "unknown"}
	}
	result.TriageResult = triageResult

	if !triageResult.Accepted {
		result.Success = true
		result.SkippedReason = triageResult.Reason
		if err := e.saveAssessment(opts, name, assessRaw); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := e.saveAssessment(opts, name, assessRaw); err != nil {
		return nil, err
	}

	planRaw, err := assessCaller.Invoke(ctx, opts.Agent, opts.Models.Plan, planPrompt(assessRaw))
	if err != nil {
		return nil, fmt.Errorf("iterate: plan stage: %w", err)
	}
	result.Plan = planRaw
	if err := e.saveStage(opts, name, "plan", planRaw); err != nil {
		return nil, err
	}

	writeCaller := stageCaller{eng: e, agent: opts.Agent}

	executionRaw, err := writeCaller.Invoke(ctx, opts.Agent, opts.Models.Execute, executePrompt(opts.ProjectDir, assessRaw, planRaw))
	if err != nil {
		return nil, fmt.Errorf("iterate: execute stage: %w", err)
	}
	result.Execution = executionRaw
	if err := e.saveStage(opts, name, "actions", executionRaw); err != nil {
		return nil, err
	}

	if len(gates) == 0 {
		result.Success = true
		return result, nil
	}

	gatesResult := e.Runner.Run(ctx, opts.ProjectDir, gates)
	result.GatesResult = gatesResult

	retries := 0
	for !gatesResult.RequiredPassed && retries < opts.MaxRetries {
		retryRaw, err := writeCaller.Invoke(ctx, opts.Agent, opts.Models.Execute, retryPromptFor(planRaw, gatesResult))
		if err != nil {
			return nil, fmt.Errorf("iterate: retry %d: %w", retries+1, err)
		}
		retries++
		if err := e.saveStage(opts, name, fmt.Sprintf("retry-%d-actions", retries), retryRaw); err != nil {
			return nil, err
		}

		gatesResult = e.Runner.Run(ctx, opts.ProjectDir, gates)
		result.GatesResult = gatesResult
	}

	result.Retries = retries
	result.Success = gatesResult.RequiredPassed
	return result, nil
}

func retryPromptFor(plan string, gatesResult gate.RunResult) string {
	var failed []string
	for _, r := range gatesResult.Results {
		if r.Required && !r.Passed {
			failed = append(failed, failedGateBlock(r.Name, r.Output))
		}
	}
	return retryPrompt(plan, failed)
}

func (e *Engine) saveAssessment(opts Options, name, raw string) error {
	dir, err := e.Audit.EnsureDir(opts.ProjectDir, opts.AuditDir)
	if err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	if err := e.Audit.SaveStageOutput(dir, name, "", raw); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	return nil
}

func (e *Engine) saveStage(opts Options, name, suffix, content string) error {
	dir, err := e.Audit.EnsureDir(opts.ProjectDir, opts.AuditDir)
	if err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	if err := e.Audit.SaveStageOutput(dir, name, suffix, content); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	return nil
}

func joinGuidance(lines []string) string {
	s := ""
	for i, l := range lines {
		if i > 0 {
			s += " "
		}
		s += l
	}
	return s
}
