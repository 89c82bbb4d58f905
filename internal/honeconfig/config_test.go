package honeconfig

import "testing"

func TestDefaultConfigIsFullyPopulated(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Models.Assess == "" || cfg.Models.Name == "" || cfg.Models.Plan == "" ||
		cfg.Models.Execute == "" || cfg.Models.Gates == "" || cfg.Models.Derive == "" || cfg.Models.Triage == "" {
		t.Errorf("expected every stage model populated, got %+v", cfg.Models)
	}
	if cfg.AuditDir == "" {
		t.Error("expected non-empty AuditDir")
	}
	if len(cfg.ReadOnlyTools) == 0 {
		t.Error("expected non-empty ReadOnlyTools")
	}
	if cfg.MaxRetries == 0 {
		t.Error("expected non-zero MaxRetries")
	}
	if cfg.GateTimeoutMs != 120000 {
		t.Errorf("GateTimeoutMs = %d, want 120000", cfg.GateTimeoutMs)
	}
	if cfg.Mode != "local" {
		t.Errorf("Mode = %q, want local", cfg.Mode)
	}
	if cfg.MinCharterLength == 0 {
		t.Error("expected non-zero MinCharterLength")
	}
	if cfg.SeverityThreshold == 0 {
		t.Error("expected non-zero SeverityThreshold")
	}
}

func TestApplyDefaultsFillsOnlyMissingFields(t *testing.T) {
	cfg := &Config{
		Models:     ModelsConfig{Assess: "opus"},
		MaxRetries: 7,
	}
	applyDefaults(cfg)

	if cfg.Models.Assess != "opus" {
		t.Errorf("Models.Assess should be preserved, got %q", cfg.Models.Assess)
	}
	if cfg.Models.Name != DefaultConfig().Models.Name {
		t.Errorf("Models.Name should fall back to default, got %q", cfg.Models.Name)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries should be preserved, got %d", cfg.MaxRetries)
	}
	if cfg.Mode != "local" {
		t.Errorf("Mode should fall back to default, got %q", cfg.Mode)
	}
	if len(cfg.ReadOnlyTools) == 0 {
		t.Error("ReadOnlyTools should fall back to default when omitted")
	}
}

func TestReadOnlyToolsStringSpaceJoins(t *testing.T) {
	got := ReadOnlyToolsString([]string{"Read", "Grep", "Glob"})
	want := "Read Grep Glob"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
