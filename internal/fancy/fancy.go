// Package fancy provides styling for stagehand's CLI output.
package fancy

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Common colors for different types of elements
var (
	ColorGreen    = lipgloss.Color("82")  // Green
	ColorRed      = lipgloss.Color("196") // Red
	ColorYellow   = lipgloss.Color("228") // Yellow
	ColorCyan     = lipgloss.Color("45")  // Cyan
	ColorGray     = lipgloss.Color("250") // Light gray
	ColorWhite    = lipgloss.Color("15")  // White
	ColorDarkGray = lipgloss.Color("240") // Dark gray
)

// Common styles shared across commands
var (
	// Style for section headers
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// Style for passing checks and the PASS verdict
	PassStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	// Style for failing checks and the FAIL verdict
	FailStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	// Style for checks that never ran
	SkipStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	// Style for descriptive information
	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	// Style for check names
	CheckStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)
)

// Pass renders a green "ok" line for a named check.
func Pass(name string) string {
	return fmt.Sprintf("%s %s", PassStyle.Render("ok  "), CheckStyle.Render(name))
}

// Fail renders a red "FAIL" line for a named check with its reason.
func Fail(name, reason string) string {
	return fmt.Sprintf("%s %s: %s", FailStyle.Render("FAIL"), CheckStyle.Render(name), reason)
}

// Skip renders a gray line for a check that never ran.
func Skip(name string) string {
	return fmt.Sprintf("%s %s", SkipStyle.Render("--  "), SkipStyle.Render(name))
}

// Verdict renders the overall gate verdict line.
func Verdict(pass bool, state string) string {
	if pass {
		return fmt.Sprintf("%s %s", PassStyle.Render("PASS"), InfoStyle.Render("("+state+")"))
	}
	return fmt.Sprintf("%s %s", FailStyle.Render("FAIL"), InfoStyle.Render("("+state+")"))
}
