// Package triage implements Hone's two-step pre-plan filter: a pure
// severity threshold check, followed by a skeptical LLM busy-work
// classification. The classifier fails open — a parse failure never
// blocks substantive work.
package triage

import (
	"context"
	"fmt"

	"github.com/svetzal/hone/internal/assess"
	"github.com/svetzal/hone/internal/jsonx"
)

// ValidChangeTypes enumerates the fixed changeType vocabulary.
var ValidChangeTypes = map[string]bool{
	"feature": true, "bugfix": true, "security": true, "performance": true,
	"architecture": true, "testing": true, "documentation": true,
	"cosmetic": true, "organization": true, "other": true, "unknown": true,
}

// Result is the triage verdict for one assessment.
type Result struct {
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason"`
	Severity   int    `json:"severity"`
	ChangeType string `json:"changeType"`
	BusyWork   bool   `json:"busyWork"`
}

// Caller invokes the assistant for the busy-work classification step.
// Modeled as an injected interface so production code wires the real
// assistant invoker (adapted by the iteration engines' stage callers)
// and tests wire a canned responder.
type Caller interface {
	Invoke(ctx context.Context, agent, model, prompt string) (string, error)
}

type verdictWire struct {
	ChangeType string `json:"changeType"`
	BusyWork   bool   `json:"busyWork"`
	Reason     string `json:"reason"`
}

// Evaluate runs the triage predicate. severityThreshold is inclusive:
// severity == threshold passes. agent/model select the busy-work
// classifier call; prose/principle feed its prompt.
//
// An error return means the assistant call itself failed (spawn error
// or non-zero exit) — that is fatal to the iteration and must not be
// confused with a classifier parse failure, which fails open instead.
func Evaluate(ctx context.Context, caller Caller, agent, model string, a assess.Structured, severityThreshold int) (Result, error) {
	if a.Severity < severityThreshold {
		return Result{
			Accepted:   false,
			Reason:     fmt.Sprintf("Severity %d is below threshold %d", a.Severity, severityThreshold),
			Severity:   a.Severity,
			ChangeType: "unknown",
			BusyWork:   false,
		}, nil
	}

	prompt := BusyWorkPrompt(a)
	out, err := caller.Invoke(ctx, agent, model, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("triage: busy-work classifier call failed: %w", err)
	}

	var wire verdictWire
	if !jsonx.ExtractObject(out, &wire) {
		// Fail open: an unparsable verdict must never block substantive work.
		return Result{
			Accepted:   true,
			Severity:   a.Severity,
			ChangeType: "other",
			BusyWork:   false,
		}, nil
	}

	changeType := wire.ChangeType
	if !ValidChangeTypes[changeType] {
		changeType = "other"
	}

	if wire.BusyWork {
		reason := wire.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return Result{
			Accepted:   false,
			Reason:     "Busy-work: " + reason,
			Severity:   a.Severity,
			ChangeType: changeType,
			BusyWork:   true,
		}, nil
	}

	return Result{
		Accepted:   true,
		Severity:   a.Severity,
		ChangeType: changeType,
		BusyWork:   false,
	}, nil
}

// BusyWorkPrompt builds the skeptical busy-work classification prompt.
// Its opening tokens ("You are a skeptical") are part of the externally
// observable stage-prompt-dispatch contract and must not change.
func BusyWorkPrompt(a assess.Structured) string {
	return fmt.Sprintf(`You are a skeptical reviewer. A prior assessment flagged the following issue:

Principle: %s
Assessment: %s

Busy-work signals to watch for: renaming variables with no behavior change, reformatting
without functional impact, adding comments that restate code, reorganizing files without
consolidating logic, chasing style nits instead of correctness or architecture problems.

Decide whether correcting this issue is genuine engineering value or busy-work. Respond
with ONLY a JSON object of the shape:
{"changeType": "<one of feature,bugfix,security,performance,architecture,testing,documentation,cosmetic,organization,other>", "busyWork": <true|false>, "reason": "<one sentence>"}`,
		a.Principle, a.Prose)
}
