// Package jsonx recovers a JSON object or array embedded in a larger
// piece of free-form text, as assistants tend to wrap their structured
// output in prose and fenced code blocks.
package jsonx

import (
	"encoding/json"
	"regexp"
)

var (
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	fencedArrayPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	bareObjectPattern   = regexp.MustCompile("(?s)(\\{.*\\})")
	bareArrayPattern    = regexp.MustCompile("(?s)(\\[.*\\])")
)

// ExtractObject recovers a `{...}` JSON object from text: first it tries
// a fenced ```json block, then falls back to the first bare `{...}`
// substring. It returns false when no candidate parses as an object.
func ExtractObject(text string, out any) bool {
	return extract(text, fencedObjectPattern, bareObjectPattern, out)
}

// ExtractArray recovers a `[...]` JSON array from text using the same
// fenced-then-bare strategy as ExtractObject. Used by the gate extractor.
func ExtractArray(text string, out any) bool {
	return extract(text, fencedArrayPattern, bareArrayPattern, out)
}

func extract(text string, fenced, bare *regexp.Regexp, out any) bool {
	if m := fenced.FindStringSubmatch(text); len(m) > 1 {
		if json.Unmarshal([]byte(m[1]), out) == nil {
			return true
		}
	}
	if m := bare.FindStringSubmatch(text); len(m) > 1 {
		if json.Unmarshal([]byte(m[1]), out) == nil {
			return true
		}
	}
	return false
}

// FindObjectSpan returns the whole matched block for the object
// ExtractObject would have parsed — the fenced block including its
// fences, preferred over a bare `{...}` — or "" if neither matched and
// parsed. Used by the assessment parser to strip the JSON block out of
// the prose.
func FindObjectSpan(text string) string {
	if m := fencedObjectPattern.FindStringSubmatch(text); len(m) > 1 {
		var probe any
		if json.Unmarshal([]byte(m[1]), &probe) == nil {
			return m[0]
		}
	}
	if m := bareObjectPattern.FindStringSubmatch(text); len(m) > 1 {
		var probe any
		if json.Unmarshal([]byte(m[1]), &probe) == nil {
			return m[0]
		}
	}
	return ""
}
