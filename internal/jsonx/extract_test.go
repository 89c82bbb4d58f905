package jsonx

import (
	"strings"
	"testing"
)

type probe struct {
	Severity int    `json:"severity"`
	Name     string `json:"name"`
}

func TestExtractObjectPrefersFencedOverBare(t *testing.T) {
	text := "here is the answer\n```json\n{\"severity\": 4, \"name\": \"fenced\"}\n```\nand also {\"severity\": 1, \"name\": \"bare\"} in prose"
	var p probe
	if !ExtractObject(text, &p) {
		t.Fatal("expected extraction to succeed")
	}
	if p.Name != "fenced" {
		t.Errorf("name = %q, want fenced (fenced block must win)", p.Name)
	}
}

func TestExtractObjectFallsBackToBare(t *testing.T) {
	text := "The result is {\"severity\": 2, \"name\": \"bare\"} thanks"
	var p probe
	if !ExtractObject(text, &p) {
		t.Fatal("expected extraction to succeed")
	}
	if p.Name != "bare" {
		t.Errorf("name = %q, want bare", p.Name)
	}
}

func TestExtractObjectNoneFound(t *testing.T) {
	var p probe
	if ExtractObject("just plain prose, no json here", &p) {
		t.Error("expected no extraction")
	}
}

func TestExtractArray(t *testing.T) {
	text := "```json\n[{\"name\":\"test\",\"command\":\"npm test\",\"required\":true}]\n```"
	var arr []map[string]any
	if !ExtractArray(text, &arr) {
		t.Fatal("expected array extraction to succeed")
	}
	if len(arr) != 1 {
		t.Fatalf("len(arr) = %d, want 1", len(arr))
	}
}

func TestFindObjectSpanRemovable(t *testing.T) {
	text := "Assessment prose.\n```json\n{\"severity\":3}\n```\nMore prose."
	span := FindObjectSpan(text)
	if span == "" {
		t.Fatal("expected a span")
	}
	if !strings.Contains(text, span) {
		t.Errorf("span %q not found in text", span)
	}
}
