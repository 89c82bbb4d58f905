package ghiterate

import (
	"context"

	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
)

// InvokerAdapter adapts *assistant.Invoker to AssistantCaller. Wire one
// instance with ReadOnly=true (plus an allowlist) as Engine's
// ReadOnlyAssistant, and a second with ReadOnly=false as
// WriteAssistant.
type InvokerAdapter struct {
	Invoker      *assistant.Invoker
	ReadOnly     bool
	AllowedTools []string
}

func (a InvokerAdapter) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	return a.Invoker.Invoke(ctx, assistant.Stage{
		Agent:        agent,
		Model:        model,
		Prompt:       prompt,
		ReadOnly:     a.ReadOnly,
		AllowedTools: a.AllowedTools,
	})
}

// CharterAdapter closes over the configured minimum charter length and
// satisfies CharterChecker.
type CharterAdapter struct {
	MinLength int
}

func (a CharterAdapter) Check(projectDir string) (charter.Result, error) {
	return charter.Check(projectDir, a.MinLength), nil
}

// GateResolverAdapter adapts *gate.Resolver to GateResolver.
type GateResolverAdapter struct {
	Resolver *gate.Resolver
}

func (a GateResolverAdapter) Resolve(ctx context.Context, projectDir, agentText string) ([]gate.Definition, error) {
	return a.Resolver.Resolve(ctx, projectDir, agentText)
}

// GateRunnerAdapter adapts *gate.Runner to GateRunner.
type GateRunnerAdapter struct {
	Runner *gate.Runner
}

func (a GateRunnerAdapter) Run(ctx context.Context, projectDir string, gates []gate.Definition) gate.RunResult {
	return a.Runner.Run(ctx, projectDir, gates)
}
