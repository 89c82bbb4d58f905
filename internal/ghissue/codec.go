package ghissue

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Proposal is the decoded form of an issue body: an assessment+plan
// pair awaiting owner approval.
type Proposal struct {
	Name       string
	Assessment string
	Plan       string
	Agent      string
	Severity   int
	Principle  string
}

type metadataWire struct {
	Agent     string `json:"agent"`
	Severity  int    `json:"severity"`
	Principle string `json:"principle"`
	Name      string `json:"name"`
}

const metadataMarker = "<!-- hone-metadata"

// EncodeBody renders p into the canonical issue body format, including
// the hidden hone-metadata comment that Decode round-trips exactly.
func EncodeBody(p Proposal) string {
	meta := metadataWire{Agent: p.Agent, Severity: p.Severity, Principle: p.Principle, Name: p.Name}
	metaJSON, _ := json.Marshal(meta)

	return fmt.Sprintf(
		"%s\n%s\n-->\n\n**Agent:** %s\n**Severity:** %d/5\n**Principle:** %s\n\n## Assessment\n\n%s\n\n## Plan\n\n%s",
		metadataMarker, metaJSON, p.Agent, p.Severity, p.Principle,
		strings.TrimSpace(p.Assessment), strings.TrimSpace(p.Plan))
}

var assessmentHeading = regexp.MustCompile(`(?s)## Assessment\n\n(.*?)\n\n## Plan`)
var planHeading = regexp.MustCompile(`(?s)## Plan\n\n(.*)\z`)

// DecodeBody parses an issue body produced by EncodeBody, returning
// nil on any parse failure rather than an error — decode is a best-
// effort probe used while filtering issues, not a fatal operation.
func DecodeBody(body string) *Proposal {
	markerIdx := strings.Index(body, metadataMarker)
	if markerIdx < 0 {
		return nil
	}
	rest := body[markerIdx+len(metadataMarker):]
	endIdx := strings.Index(rest, "-->")
	if endIdx < 0 {
		return nil
	}
	metaText := strings.TrimSpace(rest[:endIdx])

	var meta metadataWire
	if err := json.Unmarshal([]byte(metaText), &meta); err != nil {
		return nil
	}

	assessment := ""
	if m := assessmentHeading.FindStringSubmatch(body); len(m) > 1 {
		assessment = strings.TrimSpace(m[1])
	}

	plan := ""
	if m := planHeading.FindStringSubmatch(body); len(m) > 1 {
		plan = strings.TrimSpace(m[1])
	}

	return &Proposal{
		Name:       meta.Name,
		Assessment: assessment,
		Plan:       plan,
		Agent:      meta.Agent,
		Severity:   meta.Severity,
		Principle:  meta.Principle,
	}
}
