// Package display provides unified output formatting for the hone CLI.
// It visually separates Hone's own orchestration messages from the
// output of the assistant stages and quality gates it drives.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/honeconfig"
)

// Display handles all CLI output with visual hierarchy. All output
// goes to stderr so stdout stays free for --json results.
type Display struct {
	theme     *Theme
	termWidth int
}

// New creates a new Display instance.
func New() *Display {
	return NewWithOptions(false)
}

// NewWithOptions creates a Display with configuration.
func NewWithOptions(noColor bool) *Display {
	d := &Display{termWidth: getTerminalWidth()}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// getTerminalWidth returns the terminal width, defaulting to 80.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120
	}
	return width
}

// Hone prints a boxed message for Hone's own orchestration output.
func (d *Display) Hone(lines ...string) {
	d.HoneBox("HONE", lines...)
}

// HoneBox prints a boxed message with a custom title.
func (d *Display) HoneBox(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 4 // "─ TITLE "
	remainingWidth := width - titleLen

	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Fprintln(os.Stderr, d.theme.HoneBorder(topLine))

	for _, line := range lines {
		padded := d.padRight(line, width-2)
		fmt.Fprintln(os.Stderr, d.theme.HoneBorder(BoxVertical)+" "+d.theme.HoneText(padded)+" "+d.theme.HoneBorder(BoxVertical))
	}

	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Fprintln(os.Stderr, d.theme.HoneBorder(bottomLine))
}

// Status prints a single-line status message with a timestamp, no box.
func (d *Display) Status(symbol, message string) {
	timestamp := time.Now().Format("[15:04:05]")
	fmt.Fprintf(os.Stderr, "%s %s %s\n", d.theme.HoneBorder(timestamp), symbol, d.theme.HoneText(message))
}

// Success prints a success message with a green checkmark.
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolSuccess), message)
}

// Error prints an error message with a red X.
func (d *Display) Error(message string) {
	d.Status(d.theme.Error(SymbolError), message)
}

// Warning prints a warning message with a yellow triangle.
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolWarning), message)
}

// Info prints an info message with a cyan label.
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Skip prints a skip message with a cyan resume arrow.
func (d *Display) Skip(message string) {
	d.Status(d.theme.Info(SymbolSkip), message)
}

// wrapText wraps text to the given width, returning at most 5 lines.
func (d *Display) wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	text = strings.TrimSpace(text)
	if len(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len()+len(word)+1 > maxWidth {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
		}
		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	if len(lines) > 5 {
		lines = lines[:5]
		if len(lines[4]) > maxWidth-3 {
			lines[4] = lines[4][:maxWidth-3]
		}
		lines[4] = lines[4] + "..."
	}

	return lines
}

// StageStart announces that a pipeline stage is about to call the
// assistant.
func (d *Display) StageStart(name string) {
	timestamp := time.Now().Format("[15:04:05]")
	fmt.Fprintf(os.Stderr, "  %s %s %s...\n", d.theme.Dim(timestamp), d.theme.StageTimestamp(GutterStage), d.theme.StageText(name))
}

// StageOutput prints a stage's response with a left gutter, wrapped and
// truncated for readability.
func (d *Display) StageOutput(name, text string) {
	timestamp := time.Now().Format("[15:04:05]")
	gutter := d.theme.StageTimestamp(GutterStage)
	lines := d.wrapText(text, d.termWidth-20)

	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(os.Stderr, "  %s %s %s: %s\n", gutter, d.theme.Dim(timestamp), d.theme.Info(name), d.theme.StageText(line))
		} else {
			fmt.Fprintf(os.Stderr, "  %s %s\n", d.theme.StageTimestamp(GutterDot), d.theme.StageText(line))
		}
	}
}

// GatesSummary prints one line per gate result, then the aggregate.
func (d *Display) GatesSummary(result gate.RunResult) {
	for _, r := range result.Results {
		symbol := d.theme.Success(SymbolSuccess)
		if !r.Passed {
			symbol = d.theme.Error(SymbolError)
		}
		label := r.Name
		if !r.Required {
			label += " (optional)"
		}
		d.Status(symbol, label)
	}
	if result.RequiredPassed {
		d.Success("All required gates passed")
	} else {
		d.Error("Required gates failed")
	}
}

// SectionBreak prints a horizontal separator between iterations.
func (d *Display) SectionBreak() {
	fmt.Fprintln(os.Stderr, d.theme.Separator(strings.Repeat(SectionBreak, d.termWidth)))
}

// IterationHeader prints the banner for one local iteration, including
// the read-only tool allowlist the assess/name/plan/triage stages are
// restricted to.
func (d *Display) IterationHeader(agent, projectDir string, readOnlyTools []string) {
	d.SectionBreak()
	fmt.Fprintf(os.Stderr, "Iterating with %s on %s\n", d.theme.Info(agent), projectDir)
	if len(readOnlyTools) > 0 {
		fmt.Fprintf(os.Stderr, "Read-only tools: %s\n", honeconfig.ReadOnlyToolsString(readOnlyTools))
	}
	d.SectionBreak()
}

// GitHubSummary prints the three-phase GitHub-mode result summary.
func (d *Display) GitHubSummary(closed, proposed []int, skippedTriage int, executed int) {
	d.Info("Closed", fmt.Sprintf("%d rejected issue(s)", len(closed)))
	d.Info("Executed", fmt.Sprintf("%d approved issue(s)", executed))
	if skippedTriage > 0 {
		d.Skip(fmt.Sprintf("%d proposal(s) rejected by triage", skippedTriage))
	}
	d.Info("Proposed", fmt.Sprintf("%d new issue(s)", len(proposed)))
}

// Theme returns the current theme for external use.
func (d *Display) Theme() *Theme {
	return d.theme
}

// padRight pads a string to the specified width.
func (d *Display) padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Truncate truncates text to a max length with an ellipsis.
func Truncate(s string, max int) string {
	s = CleanText(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// CleanText removes newlines and collapses repeated spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
