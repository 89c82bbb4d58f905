// Package assess decodes a structured severity/principle/category
// assessment out of the assistant's free-form response to the "assess"
// stage prompt.
package assess

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/svetzal/hone/internal/jsonx"
)

// Structured is the decoded assessment, alongside the prose the
// assistant wrote around its JSON block and the full raw response.
type Structured struct {
	Severity  int    `json:"severity"`
	Principle string `json:"principle"`
	Category  string `json:"category"`
	Prose     string `json:"prose"`
	Raw       string `json:"raw"`
}

type wireAssessment struct {
	Severity  json.Number `json:"severity"`
	Principle string      `json:"principle"`
	Category  string      `json:"category"`
}

// Parse decodes raw assistant output into a Structured assessment.
// Severity is clamped to [1,5] and rounded; a missing or non-numeric
// severity defaults to 3. Principle defaults to "unknown", category to
// "other". Prose is the raw text with the JSON block removed.
func Parse(raw string) Structured {
	var wire wireAssessment
	found := jsonx.ExtractObject(raw, &wire)

	s := Structured{
		Severity:  3,
		Principle: "unknown",
		Category:  "other",
		Raw:       raw,
	}

	if found {
		if f, err := wire.Severity.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			s.Severity = clampRound(f)
		}
		if wire.Principle != "" {
			s.Principle = wire.Principle
		}
		if wire.Category != "" {
			s.Category = wire.Category
		}
	}

	s.Prose = stripJSONBlock(raw)
	return s
}

func clampRound(f float64) int {
	r := int(math.Round(f))
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// stripJSONBlock removes the first JSON object block (fenced or bare)
// from text. If removal would leave nothing, the trimmed raw text is
// returned instead.
func stripJSONBlock(raw string) string {
	span := jsonx.FindObjectSpan(raw)
	if span == "" {
		return strings.TrimSpace(raw)
	}

	stripped := strings.Replace(raw, span, "", 1)
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return strings.TrimSpace(raw)
	}
	return stripped
}
