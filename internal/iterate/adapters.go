package iterate

import (
	"context"

	"github.com/svetzal/hone/internal/assistant"
	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
)

// InvokerAdapter adapts *assistant.Invoker to AssistantCaller.
type InvokerAdapter struct {
	Invoker *assistant.Invoker
}

func (a InvokerAdapter) Invoke(ctx context.Context, stage assistant.Stage) (string, error) {
	return a.Invoker.Invoke(ctx, stage)
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
