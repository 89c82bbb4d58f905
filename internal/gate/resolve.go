package gate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/svetzal/hone/internal/jsonx"
)

// Caller invokes the assistant read-only to extract gates from agent text.
type Caller interface {
	Invoke(ctx context.Context, agent, model, prompt string) (string, error)
}

type overrideFile struct {
	Gates []overrideGate `json:"gates" yaml:"gates"`
}

type overrideGate struct {
	Name     string `json:"name" yaml:"name"`
	Command  string `json:"command" yaml:"command"`
	Required *bool  `json:"required" yaml:"required"`
}

// Resolver resolves the gate list for a project: on-disk override file,
// then assistant-extracted gates from agent text, else empty.
type Resolver struct {
	Caller Caller
	Model  string
}

// Resolve implements the priority chain in §4.7. A JSON/YAML parse
// error or missing file in step 1 falls through to step 2, never raises.
func (r *Resolver) Resolve(ctx context.Context, projectDir, agentText string) ([]Definition, error) {
	if defs, ok := readOverrideFile(projectDir); ok {
		return defs, nil
	}

	if r.Caller == nil {
		return nil, nil
	}

	prompt := ExtractionPrompt(agentText)
	out, err := r.Caller.Invoke(ctx, "", r.Model, prompt)
	if err != nil {
		return nil, err
	}

	defs := extractFromAssistantText(out)
	return defs, nil
}

func readOverrideFile(projectDir string) ([]Definition, bool) {
	if defs, ok := readJSONOverride(filepath.Join(projectDir, ".hone-gates.json")); ok {
		return defs, true
	}
	if defs, ok := readYAMLOverride(filepath.Join(projectDir, ".hone-gates.yaml")); ok {
		return defs, true
	}
	return nil, false
}

func readJSONOverride(path string) ([]Definition, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var f overrideFile
	if json.Unmarshal(data, &f) != nil {
		return nil, false
	}
	return normalizeOverride(f), true
}

func readYAMLOverride(path string) ([]Definition, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var f overrideFile
	if yaml.Unmarshal(data, &f) != nil {
		return nil, false
	}
	return normalizeOverride(f), true
}

func normalizeOverride(f overrideFile) []Definition {
	defs := make([]Definition, 0, len(f.Gates))
	for _, g := range f.Gates {
		required := true
		if g.Required != nil {
			required = *g.Required
		}
		defs = append(defs, Definition{Name: g.Name, Command: g.Command, Required: required})
	}
	return defs
}

func extractFromAssistantText(text string) []Definition {
	var raw []overrideGate
	if !jsonx.ExtractArray(text, &raw) {
		return nil
	}

	defs := make([]Definition, 0, len(raw))
	for _, g := range raw {
		if g.Name == "" && g.Command == "" {
			continue
		}
		required := true
		if g.Required != nil {
			required = *g.Required
		}
		defs = append(defs, Definition{Name: g.Name, Command: g.Command, Required: required})
	}
	return defs
}

// ExtractionPrompt builds the gate-extraction prompt sent to the
// assistant against the agent's markdown text.
func ExtractionPrompt(agentText string) string {
	return "Based on the following agent definition, extract the project's quality gates " +
		"(test, lint, typecheck, security, or similar) as a strict JSON array of objects " +
		"with the shape {\"name\": string, \"command\": string, \"required\": boolean}. " +
		"Respond with ONLY the JSON array, nothing else.\n\n## Agent\n\n" + agentText
}
