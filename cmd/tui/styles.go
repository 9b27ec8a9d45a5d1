// Package tui is the interactive search console for zine-site.
// It uses the Charm Bubble Tea framework.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Violet
	secondaryColor = lipgloss.Color("#10B981") // Emerald
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red

	fgColor     = lipgloss.Color("#CDD6F4") // Light foreground
	mutedColor  = lipgloss.Color("#6C7086") // Muted text
	borderColor = lipgloss.Color("#45475A") // Border
)

// headerStyle creates the header/banner style
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(fgColor).
	Background(primaryColor).
	Padding(0, 2).
	MarginBottom(1)

// subtitleStyle creates the subtitle/description style
var subtitleStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Italic(true)

// resultTitleStyle is the style of a result title line
var resultTitleStyle = lipgloss.NewStyle().
	Foreground(secondaryColor).
	Bold(true)

// badgeStyle marks the result type
var badgeStyle = lipgloss.NewStyle().
	Foreground(accentColor).
	Bold(true)

// avatarStyle is the initials placeholder of a contributor without a portrait
var avatarStyle = lipgloss.NewStyle().
	Foreground(fgColor).
	Background(borderColor).
	Padding(0, 1)

// urlStyle is the style of result links
var urlStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Underline(true)

// snippetStyle is the style of result snippets
var snippetStyle = lipgloss.NewStyle().
	Foreground(fgColor).
	PaddingLeft(2)

// inputLabelStyle creates the style for input labels
var inputLabelStyle = lipgloss.NewStyle().
	Foreground(secondaryColor).
	Bold(true)

// progressStyle creates the style for progress indicators
var progressStyle = lipgloss.NewStyle().
	Foreground(accentColor)

// helpStyle creates the style for help text at the bottom
var helpStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	MarginTop(1)

// boxStyle creates a bordered box style
var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(borderColor).
	Padding(1, 2)

// errorStyle creates style for error messages
var errorStyle = lipgloss.NewStyle().
	Foreground(errorColor).
	Bold(true)
