package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal colors and styles
var (
	ColorPurple = lipgloss.Color("141")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("240")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	// InjectedStyle marks archive entries added by a release.
	InjectedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			PaddingLeft(2)

	// EntryStyle marks archive entries copied from the build.
	EntryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(2)

	IconSuccess = "✅"
	IconWarning = "⚠️ "
	IconError   = "❌"
	IconPackage = "📦"
	IconWatch   = "👀"
	IconSearch  = "🔍"
)
