package display

import "github.com/fatih/color"

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	SectionBreak   = "━"
)

// Status symbols
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkip    = "↻"
	SymbolPending = "○"
)

// GutterStage marks a pipeline stage's output line; GutterDot continues
// a wrapped line beneath it.
const (
	GutterStage = "▸"
	GutterDot   = "·"
)

// IndentStage is the indentation for stage output lines.
const IndentStage = "  "

// Theme holds all color functions for consistent styling.
type Theme struct {
	// Hone orchestration (prominent)
	HoneBorder func(a ...interface{}) string
	HoneLabel  func(a ...interface{}) string
	HoneText   func(a ...interface{}) string

	// Stage output (subdued)
	StageTimestamp func(a ...interface{}) string
	StageText      func(a ...interface{}) string

	// Status indicators
	Success func(a ...interface{}) string
	Error   func(a ...interface{}) string
	Warning func(a ...interface{}) string
	Info    func(a ...interface{}) string

	// Structural elements
	Bold      func(a ...interface{}) string
	Dim       func(a ...interface{}) string
	Separator func(a ...interface{}) string
}

// DefaultTheme creates the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		// Hone orchestration - bright cyan for visibility
		HoneBorder: color.New(color.FgCyan).SprintFunc(),
		HoneLabel:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		HoneText:   color.New(color.FgWhite).SprintFunc(),

		// Stage output - dimmer/gray to distinguish from orchestration
		StageTimestamp: color.New(color.FgHiBlack).SprintFunc(),
		StageText:      color.New(color.FgWhite).SprintFunc(),

		// Status indicators
		Success: color.New(color.FgGreen).SprintFunc(),
		Error:   color.New(color.FgRed).SprintFunc(),
		Warning: color.New(color.FgYellow).SprintFunc(),
		Info:    color.New(color.FgCyan).SprintFunc(),

		// Structural
		Bold:      color.New(color.Bold).SprintFunc(),
		Dim:       color.New(color.FgHiBlack).SprintFunc(),
		Separator: color.New(color.FgCyan).SprintFunc(),
	}
}

// NoColorTheme creates a theme without colors (for --no-color or a non-TTY).
func NoColorTheme() *Theme {
	identity := func(a ...interface{}) string {
		if len(a) == 0 {
			return ""
		}
		if s, ok := a[0].(string); ok {
			return s
		}
		return ""
	}
	return &Theme{
		HoneBorder:     identity,
		HoneLabel:      identity,
		HoneText:       identity,
		StageTimestamp: identity,
		StageText:      identity,
		Success:        identity,
		Error:          identity,
		Warning:        identity,
		Info:           identity,
		Bold:           identity,
		Dim:            identity,
		Separator:      identity,
	}
}
