// Package ghiterate implements Hone's GitHub approval-mode engine
// (C13): close rejected issues, execute approved ones, then propose
// new ones, executing approved issues with the same execute/verify
// sub-flow as the local iteration engine.
package ghiterate

import (
	"context"

	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/ghissue"
)

// ExecutionOutcome records what happened to one approved issue during
// Phase 2.
type ExecutionOutcome struct {
	IssueNumber int    `json:"issueNumber"`
	Success     bool   `json:"success"`
	CommitHash  string `json:"commitHash,omitempty"`
	Retries     int    `json:"retries"`
}

// Result is the outcome of one full GitHub-mode run.
type Result struct {
	Closed        []int              `json:"closed"`
	Executed      []ExecutionOutcome `json:"executed"`
	Proposed      []int              `json:"proposed"`
	SkippedTriage int                `json:"skippedTriage"`
	CharterCheck  charter.Result     `json:"charterCheck"`

	// Success is false when the charter check failed (phase 3 is
	// skipped entirely, per §7's CharterInsufficient error table entry)
	// or when any approved issue failed execution in phase 2.
	Success bool `json:"success"`
}

// Options configures one GitHub-mode run.
type Options struct {
	Agent             string
	AgentText         string
	ProjectDir        string
	RepoSlug          string
	Proposals         int
	Models            StageModels
	MaxRetries        int
	SkipGates         bool
	SkipTriage        bool
	SeverityThreshold int
	MinCharterLength  int
	ReadOnlyTools     []string
	AuditDir          string
}

// StageModels selects which model backs each pipeline stage.
type StageModels struct {
	Assess  string
	Name    string
	Plan    string
	Execute string
	Triage  string
}

// IssueClient is the subset of ghissue.Client the engine depends on.
type IssueClient interface {
	OwnerLogin(ctx context.Context) (string, error)
	ListOpenIssues(ctx context.Context) ([]ghissue.Issue, error)
	FetchReactions(ctx context.Context, n int) ([]string, []string)
	CreateIssue(ctx context.Context, title, body string) (int, error)
	CloseIssue(ctx context.Context, n int, comment string) error
	CommitAll(ctx context.Context, workDir, message string) (string, error)
	EnsureHoneLabel(ctx context.Context)
}

// AssistantCaller is the subset of assistant.Invoker this engine needs:
// execute/retry calls in Phase 2 and assess/name/plan/triage calls in
// Phase 3.
type AssistantCaller interface {
	Invoke(ctx context.Context, agent, model, prompt string) (string, error)
}

// CharterChecker inspects the project for intent documentation.
type CharterChecker interface {
	Check(projectDir string) (charter.Result, error)
}

// GateResolver resolves the gate list for a project.
type GateResolver interface {
	Resolve(ctx context.Context, projectDir string, agentText string) ([]gate.Definition, error)
}

// GateRunner executes a resolved gate list.
type GateRunner interface {
	Run(ctx context.Context, projectDir string, gates []gate.Definition) gate.RunResult
}

// AuditSink persists stage outputs as markdown files.
type AuditSink interface {
	EnsureDir(projectDir, name string) (string, error)
	SaveStageOutput(dir, name, suffix, content string) error
}
