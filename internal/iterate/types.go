package iterate

import (
	"github.com/svetzal/hone/internal/assess"
	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/triage"
)

// Result is the outcome of one full pass through the assess → verify
// pipeline.
type Result struct {
	Name                 string            `json:"name"`
	Assessment           string            `json:"assessment"`
	Plan                 string            `json:"plan"`
	Execution            string            `json:"execution"`
	GatesResult          gate.RunResult    `json:"gatesResult"`
	Retries              int               `json:"retries"`
	Success              bool              `json:"success"`
	StructuredAssessment assess.Structured `json:"structuredAssessment"`
	TriageResult         triage.Result     `json:"triageResult"`
	CharterCheck         charter.Result    `json:"charterCheck"`
	SkippedReason        string            `json:"skippedReason,omitempty"`
}

// Options configures one iteration.
type Options struct {
	Agent             string
	AgentText         string // full agent file contents, for gate extraction (C8 step 2)
	ProjectDir        string
	Models            StageModels
	MaxRetries        int
	GateTimeoutMs     int
	SkipGates         bool
	SkipCharter       bool
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
	Gates   string
	Triage  string
}
