package assess

import "testing"

func TestParseClampsSeverityHigh(t *testing.T) {
	s := Parse(`{"severity": 9, "principle": "DRY", "category": "duplication"}`)
	if s.Severity != 5 {
		t.Errorf("severity = %d, want 5", s.Severity)
	}
}

func TestParseClampsSeverityLow(t *testing.T) {
	s := Parse(`{"severity": -3, "principle": "DRY", "category": "duplication"}`)
	if s.Severity != 1 {
		t.Errorf("severity = %d, want 1", s.Severity)
	}
}

func TestParseRoundsSeverity(t *testing.T) {
	s := Parse(`{"severity": 3.6, "principle": "DRY", "category": "duplication"}`)
	if s.Severity != 4 {
		t.Errorf("severity = %d, want 4", s.Severity)
	}
}

func TestParseMissingSeverityDefaultsToThree(t *testing.T) {
	s := Parse(`This has no JSON at all in it.`)
	if s.Severity != 3 {
		t.Errorf("severity = %d, want 3", s.Severity)
	}
	if s.Principle != "unknown" {
		t.Errorf("principle = %q, want unknown", s.Principle)
	}
	if s.Category != "other" {
		t.Errorf("category = %q, want other", s.Category)
	}
}

func TestParseProseHasJSONRemoved(t *testing.T) {
	raw := "The project violates SRP.\n```json\n{\"severity\": 4, \"principle\": \"SRP\", \"category\": \"architecture\"}\n```\n"
	s := Parse(raw)
	if s.Prose == raw {
		t.Error("expected prose to differ from raw (JSON block removed)")
	}
	if s.Raw != raw {
		t.Error("raw must retain the full original response")
	}
}

func TestParseProseFallsBackToRawWhenStrippingEmptiesIt(t *testing.T) {
	raw := `{"severity": 2, "principle": "KISS", "category": "cosmetic"}`
	s := Parse(raw)
	if s.Prose != raw {
		t.Errorf("prose = %q, want fallback to raw %q", s.Prose, raw)
	}
}
