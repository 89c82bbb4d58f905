// Package honeconfig loads Hone's configuration: a typed struct backed
// by viper, read from a JSON file in the user's config directory, with
// defaults merged in per-field so a partial file never drops settings.
package honeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of user-tunable settings for an iteration.
type Config struct {
	Models            ModelsConfig `mapstructure:"models"`
	AuditDir          string       `mapstructure:"auditDir"`
	ReadOnlyTools     []string     `mapstructure:"readOnlyTools"`
	MaxRetries        int          `mapstructure:"maxRetries"`
	GateTimeoutMs     int          `mapstructure:"gateTimeoutMs"`
	Mode              string       `mapstructure:"mode"`
	MinCharterLength  int          `mapstructure:"minCharterLength"`
	SeverityThreshold int          `mapstructure:"severityThreshold"`
}

// ModelsConfig selects which model backs each pipeline stage.
type ModelsConfig struct {
	Assess  string `mapstructure:"assess"`
	Name    string `mapstructure:"name"`
	Plan    string `mapstructure:"plan"`
	Execute string `mapstructure:"execute"`
	Gates   string `mapstructure:"gates"`
	Derive  string `mapstructure:"derive"`
	Triage  string `mapstructure:"triage"`
}

// ConfigDir returns <user-config-home>/hone, creating nothing itself.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("honeconfig: resolving user config dir: %w", err)
	}
	return filepath.Join(base, "hone"), nil
}

// Load reads <user-config-home>/hone/config.json, if present, and
// layers it over DefaultConfig(). A missing or unreadable file yields
// defaults; this is not an error condition.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(dir, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), nil
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultConfig returns the fully populated default configuration. The
// field set mirrors §3 of the spec exactly: models per stage, audit
// directory, read-only tool allowlist, retry/timeout bounds, operating
// mode, and the charter/triage thresholds.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Assess:  "sonnet",
			Name:    "sonnet",
			Plan:    "sonnet",
			Execute: "sonnet",
			Gates:   "sonnet",
			Derive:  "sonnet",
			Triage:  "sonnet",
		},
		AuditDir:          ".hone/audit",
		ReadOnlyTools:     []string{"Read", "Grep", "Glob"},
		MaxRetries:        3,
		GateTimeoutMs:     120000,
		Mode:              "local",
		MinCharterLength:  200,
		SeverityThreshold: 3,
	}
}

// applyDefaults merges zero-valued fields in cfg with DefaultConfig(),
// field by field, so a user file that omits a setting never loses it.
// This mirrors the teacher's config.applyDefaults and resolves the
// open question that getDefaultConfig must always yield the full §3
// field set.
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Models.Assess == "" {
		cfg.Models.Assess = defaults.Models.Assess
	}
	if cfg.Models.Name == "" {
		cfg.Models.Name = defaults.Models.Name
	}
	if cfg.Models.Plan == "" {
		cfg.Models.Plan = defaults.Models.Plan
	}
	if cfg.Models.Execute == "" {
		cfg.Models.Execute = defaults.Models.Execute
	}
	if cfg.Models.Gates == "" {
		cfg.Models.Gates = defaults.Models.Gates
	}
	if cfg.Models.Derive == "" {
		cfg.Models.Derive = defaults.Models.Derive
	}
	if cfg.Models.Triage == "" {
		cfg.Models.Triage = defaults.Models.Triage
	}
	if cfg.AuditDir == "" {
		cfg.AuditDir = defaults.AuditDir
	}
	if len(cfg.ReadOnlyTools) == 0 {
		cfg.ReadOnlyTools = defaults.ReadOnlyTools
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.GateTimeoutMs == 0 {
		cfg.GateTimeoutMs = defaults.GateTimeoutMs
	}
	if cfg.Mode == "" {
		cfg.Mode = defaults.Mode
	}
	if cfg.MinCharterLength == 0 {
		cfg.MinCharterLength = defaults.MinCharterLength
	}
	if cfg.SeverityThreshold == 0 {
		cfg.SeverityThreshold = defaults.SeverityThreshold
	}
}

// ReadOnlyToolsString space-joins the allowlist, matching §3's
// "readOnlyTools (space-joined allowlist)" wire representation. Used by
// the CLI's iteration banner; the actual --allowedTools process
// argument is comma-joined separately in internal/assistant.
func ReadOnlyToolsString(tools []string) string {
	return strings.Join(tools, " ")
}
