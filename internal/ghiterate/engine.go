package ghiterate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/svetzal/hone/internal/assess"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/ghissue"
	"github.com/svetzal/hone/internal/iterate"
	"github.com/svetzal/hone/internal/triage"
)

// Engine runs the three-phase GitHub approval flow.
type Engine struct {
	Issues IssueClient

	// ReadOnlyAssistant backs assess/name/plan/triage calls;
	// WriteAssistant backs execute/retry calls. Mirrors the local
	// engine's read-only-vs-write stageCaller split (internal/iterate).
	ReadOnlyAssistant AssistantCaller
	WriteAssistant    AssistantCaller

	Charter CharterChecker
	Gates   GateResolver
	Runner  GateRunner
	Audit   AuditSink

	// Now returns the current time in epoch milliseconds, used for the
	// name-sanitizer fallback. Defaults to time.Now when nil.
	Now func() int64
}

func (e *Engine) now() int64 {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UnixMilli()
}

// Run executes phase 0 (charter), phase 1 (close rejected), phase 2
// (execute approved), phase 3 (propose new), strictly in order. An
// approved issue whose gates fail is recorded as an unsuccessful
// outcome and does not prevent phase 3; an error from the issue
// gateway, git, the audit sink, or an assistant call aborts the run.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	check, err := e.Charter.Check(opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("ghiterate: charter check: %w", err)
	}
	result.CharterCheck = check

	issues, err := e.Issues.ListOpenIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("ghiterate: listing issues: %w", err)
	}

	owner, err := e.Issues.OwnerLogin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ghiterate: resolving owner: %w", err)
	}

	closed := map[int]bool{}
	for i := range issues {
		issue := &issues[i]
		up, down := e.Issues.FetchReactions(ctx, issue.Number)
		if containsUser(down, owner) {
			if err := e.Issues.CloseIssue(ctx, issue.Number,
				"Closed: rejected by product owner (thumbs-down reaction)."); err != nil {
				return nil, fmt.Errorf("ghiterate: closing issue %d: %w", issue.Number, err)
			}
			closed[issue.Number] = true
			result.Closed = append(result.Closed, issue.Number)
			continue
		}
		issue.ThumbsUp, issue.ThumbsDown = up, down
	}

	var approved []ghissue.Issue
	for _, issue := range issues {
		if closed[issue.Number] {
			continue
		}
		if containsUser(issue.ThumbsUp, owner) {
			approved = append(approved, issue)
		}
	}
	sort.Slice(approved, func(i, j int) bool { return approved[i].CreatedAt.Before(approved[j].CreatedAt) })

	for _, issue := range approved {
		outcome, err := e.executeApproved(ctx, opts, issue)
		if err != nil {
			return nil, fmt.Errorf("ghiterate: executing issue %d: %w", issue.Number, err)
		}
		if outcome != nil {
			result.Executed = append(result.Executed, *outcome)
		}
	}

	if check.Passed {
		for i := 0; i < opts.Proposals; i++ {
			created, skippedTriage, err := e.propose(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("ghiterate: proposing: %w", err)
			}
			if skippedTriage {
				result.SkippedTriage++
				continue
			}
			if created > 0 {
				result.Proposed = append(result.Proposed, created)
			}
		}
	}

	result.Success = check.Passed
	for _, outcome := range result.Executed {
		if !outcome.Success {
			result.Success = false
		}
	}

	return result, nil
}

func containsUser(users []string, user string) bool {
	for _, u := range users {
		if u == user {
			return true
		}
	}
	return false
}

// executeApproved decodes the issue's proposal and runs the same
// execute+verify sub-flow as the local engine (same execute and retry
// prompts, same bounded retry loop) against the already-persisted
// assessment and plan, without re-running assess/plan.
func (e *Engine) executeApproved(ctx context.Context, opts Options, issue ghissue.Issue) (*ExecutionOutcome, error) {
	proposal := ghissue.DecodeBody(issue.Body)
	if proposal == nil {
		return nil, nil
	}

	resolved, err := e.Gates.Resolve(ctx, opts.ProjectDir, opts.AgentText)
	if err != nil {
		return nil, err
	}

	execPrompt := fmt.Sprintf("Execute the following plan to improve the project in %s.\n\nWhy:\n%s\n\nPlan:\n%s",
		opts.ProjectDir, proposal.Assessment, proposal.Plan)

	executionRaw, err := e.WriteAssistant.Invoke(ctx, opts.Agent, opts.Models.Execute, execPrompt)
	if err != nil {
		return nil, fmt.Errorf("execute stage: %w", err)
	}
	if err := e.saveStage(opts, proposal.Name, "actions", executionRaw); err != nil {
		return nil, err
	}

	if len(resolved) == 0 {
		return e.finishApproved(ctx, opts, issue, gate.RunResult{AllPassed: true, RequiredPassed: true}, 0)
	}

	gatesResult := e.Runner.Run(ctx, opts.ProjectDir, resolved)
	retries := 0
	for !gatesResult.RequiredPassed && retries < opts.MaxRetries {
		retryRaw, err := e.WriteAssistant.Invoke(ctx, opts.Agent, opts.Models.Execute, retryPromptFor(proposal.Plan, gatesResult))
		if err != nil {
			return nil, fmt.Errorf("retry %d: %w", retries+1, err)
		}
		retries++
		if err := e.saveStage(opts, proposal.Name, fmt.Sprintf("retry-%d-actions", retries), retryRaw); err != nil {
			return nil, err
		}
		gatesResult = e.Runner.Run(ctx, opts.ProjectDir, resolved)
	}

	return e.finishApproved(ctx, opts, issue, gatesResult, retries)
}

func (e *Engine) finishApproved(ctx context.Context, opts Options, issue ghissue.Issue, gatesResult gate.RunResult, retries int) (*ExecutionOutcome, error) {
	if gatesResult.RequiredPassed {
		hash, err := e.Issues.CommitAll(ctx, opts.ProjectDir, fmt.Sprintf("[Hone] %s (#%d)", issue.Title, issue.Number))
		if err != nil {
			return nil, fmt.Errorf("committing: %w", err)
		}
		if err := e.Issues.CloseIssue(ctx, issue.Number,
			fmt.Sprintf("Completed successfully.\n\nCommit: %s", hash)); err != nil {
			return nil, fmt.Errorf("closing issue: %w", err)
		}
		return &ExecutionOutcome{IssueNumber: issue.Number, Success: true, CommitHash: hash, Retries: retries}, nil
	}

	comment := fmt.Sprintf("Failed: quality gates did not pass after %d retries.\n\n", retries) +
		failedRequiredGateSummary(gatesResult)
	if err := e.Issues.CloseIssue(ctx, issue.Number, comment); err != nil {
		return nil, fmt.Errorf("closing issue: %w", err)
	}
	return &ExecutionOutcome{IssueNumber: issue.Number, Success: false, Retries: retries}, nil
}

// retryPromptFor builds the retry prompt, matching the local engine's
// contract exactly (same opening tokens, same gate-block format).
func retryPromptFor(plan string, gatesResult gate.RunResult) string {
	s := "The previous execution introduced quality gate failures. Fix the issues so the gates pass.\n\n" +
		"## Original Plan\n" + plan + "\n\n## Failed Gates\n"
	for _, r := range gatesResult.Results {
		if r.Required && !r.Passed {
			s += fmt.Sprintf("### Gate: %s\n\n%s\n\n", r.Name, r.Output)
		}
	}
	return s
}

// failedRequiredGateSummary renders each failed required gate's first
// 500 characters of output for the issue-close comment, per §4.10.
func failedRequiredGateSummary(gatesResult gate.RunResult) string {
	var s string
	for _, r := range gatesResult.Results {
		if r.Required && !r.Passed {
			output := r.Output
			if len(output) > 500 {
				output = output[:500]
			}
			s += fmt.Sprintf("### Gate: %s\n\n%s\n\n", r.Name, output)
		}
	}
	return s
}

// propose runs assess → name → save → triage → plan → save → create
// issue, and reports whether triage rejected the assessment.
func (e *Engine) propose(ctx context.Context, opts Options) (issueNumber int, skippedTriage bool, err error) {
	assessPrompt := fmt.Sprintf("Assess the project in %s against your principles. Identify the principle "+
		"that it is most violating, and describe how we should correct it.", opts.ProjectDir)
	assessRaw, err := e.ReadOnlyAssistant.Invoke(ctx, opts.Agent, opts.Models.Assess, assessPrompt)
	if err != nil {
		return 0, false, fmt.Errorf("assess stage: %w", err)
	}
	structured := assess.Parse(assessRaw)

	namePrompt := "Output ONLY a short kebab-case filename (no extension, no explanation) that summarizes " +
		"the assessment above in 2-5 words.\n\n" + assessRaw
	nameRaw, err := e.ReadOnlyAssistant.Invoke(ctx, opts.Agent, opts.Models.Name, namePrompt)
	if err != nil {
		return 0, false, fmt.Errorf("name stage: %w", err)
	}
	name := iterate.SanitizeName(nameRaw, e.now())

	if err := e.saveStage(opts, name, "", assessRaw); err != nil {
		return 0, false, err
	}

	if !opts.SkipTriage {
		caller := assistantTriageCaller{e.ReadOnlyAssistant}
		result, err := triage.Evaluate(ctx, caller, opts.Agent, opts.Models.Triage, structured, opts.SeverityThreshold)
		if err != nil {
			return 0, false, fmt.Errorf("triage stage: %w", err)
		}
		if !result.Accepted {
			return 0, true, nil
		}
	}

	planPrompt := "Based on the following assessment, write a concrete, actionable plan to correct the " +
		"identified violation.\n\n" + assessRaw
	planRaw, err := e.ReadOnlyAssistant.Invoke(ctx, opts.Agent, opts.Models.Plan, planPrompt)
	if err != nil {
		return 0, false, fmt.Errorf("plan stage: %w", err)
	}
	if err := e.saveStage(opts, name, "plan", planRaw); err != nil {
		return 0, false, err
	}

	e.Issues.EnsureHoneLabel(ctx)

	body := ghissue.EncodeBody(ghissue.Proposal{
		Name:       name,
		Assessment: strings.TrimSpace(assessRaw),
		Plan:       strings.TrimSpace(planRaw),
		Agent:      opts.Agent,
		Severity:   structured.Severity,
		Principle:  structured.Principle,
	})
	n, err := e.Issues.CreateIssue(ctx, name, body)
	if err != nil {
		return 0, false, fmt.Errorf("creating issue: %w", err)
	}
	return n, false, nil
}

func (e *Engine) saveStage(opts Options, name, suffix, content string) error {
	dir, err := e.Audit.EnsureDir(opts.ProjectDir, opts.AuditDir)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := e.Audit.SaveStageOutput(dir, name, suffix, content); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

// assistantTriageCaller adapts AssistantCaller to triage.Caller.
type assistantTriageCaller struct {
	assistant AssistantCaller
}

func (c assistantTriageCaller) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	return c.assistant.Invoke(ctx, agent, model, prompt)
}
