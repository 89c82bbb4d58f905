package iterate

import (
	"context"

	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
)

// AssistantCaller is the subset of assistant.Invoker the engine depends
// on. Production wiring passes *assistant.Invoker through InvokerAdapter; tests inject a
// canned implementation keyed off prompt prefixes.
type AssistantCaller interface {
	Invoke(ctx context.Context, stage assistant.Stage) (string, error)
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
