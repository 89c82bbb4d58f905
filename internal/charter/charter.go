// Package charter inspects a project directory for intent documentation
// — a README, a CHARTER.md, a "## Project Charter" section in
// CLAUDE.md, or a package-manifest description — and reports whether
// enough of it exists to justify letting the assistant propose changes.
package charter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Source is one inspected charter source.
type Source struct {
	File       string `json:"file"`
	Length     int    `json:"length"`
	Sufficient bool   `json:"sufficient"`
}

// Result is the outcome of a charter check.
type Result struct {
	Passed   bool     `json:"passed"`
	Sources  []Source `json:"sources"`
	Guidance []string `json:"guidance"`
}

var projectCharterHeading = regexp.MustCompile(`(?s)## Project Charter\n(.*?)(\n## |\z)`)

// Check inspects projectDir's four charter sources and reports
// sufficiency against minLength. Passes iff any collected source has
// length >= minLength.
func Check(projectDir string, minLength int) Result {
	var sources []Source

	if content, ok := readTrimmed(filepath.Join(projectDir, "CHARTER.md")); ok {
		sources = append(sources, makeSource("CHARTER.md", content, minLength))
	}

	if content, ok := readFile(filepath.Join(projectDir, "CLAUDE.md")); ok {
		if m := projectCharterHeading.FindStringSubmatch(content); len(m) > 1 {
			section := strings.TrimSpace(m[1])
			sources = append(sources, makeSource("CLAUDE.md", section, minLength))
		}
	}

	if content, ok := readTrimmed(filepath.Join(projectDir, "README.md")); ok {
		sources = append(sources, makeSource("README.md", content, minLength))
	}

	if desc, file, ok := packageDescription(projectDir); ok {
		sources = append(sources, makeSource(file, desc, minLength))
	}

	result := Result{Sources: sources}
	for _, s := range sources {
		if s.Sufficient {
			result.Passed = true
			break
		}
	}

	if !result.Passed {
		if len(sources) == 0 {
			result.Guidance = []string{
				"No charter sources found: add a README.md, CHARTER.md, a \"## Project Charter\" section to CLAUDE.md, or a description field to your package manifest.",
				"The charter should explain the project's purpose and intended design so the assistant can reason about violations of that intent.",
			}
		} else {
			result.Guidance = []string{
				"Charter sources were found but are too short to establish project intent.",
				"Expand README.md, CHARTER.md, the CLAUDE.md Project Charter section, or your package manifest's description.",
			}
		}
	}

	return result
}

func makeSource(file, content string, minLength int) Source {
	return Source{File: file, Length: len(content), Sufficient: len(content) >= minLength}
}

func readTrimmed(path string) (string, bool) {
	content, ok := readFile(path)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(content), true
}

func readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func packageDescription(projectDir string) (desc, file string, ok bool) {
	if data, err := os.ReadFile(filepath.Join(projectDir, "package.json")); err == nil {
		var pkg struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Description != "" {
			return pkg.Description, "package.json", true
		}
	}

	if data, err := os.ReadFile(filepath.Join(projectDir, "mix.exs")); err == nil {
		if d, found := extractDescription(string(data)); found {
			return d, "mix.exs", true
		}
	}

	if data, err := os.ReadFile(filepath.Join(projectDir, "pyproject.toml")); err == nil {
		if d, found := extractDescription(string(data)); found {
			return d, "pyproject.toml", true
		}
	}

	return "", "", false
}

var quotedDescriptionPattern = regexp.MustCompile(`(?m)^\s*description\s*[:=]\s*"([^"]*)"`)

func extractDescription(content string) (string, bool) {
	if m := quotedDescriptionPattern.FindStringSubmatch(content); len(m) > 1 {
		return m[1], true
	}
	return "", false
}
