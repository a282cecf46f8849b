// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// The palette leans on indigo for identity and keeps the status colors
// close to their conventional terminal meanings. Hint gray and index
// blue match the prompt styles in internal/tui so menus and command
// output read as one surface.
const (
	colorIndigo = lipgloss.Color("#4F46E5")
	colorGray   = lipgloss.Color("#6B7280")
	colorGreen  = lipgloss.Color("#16A34A")
	colorRed    = lipgloss.Color("#DC2626")
	colorAmber  = lipgloss.Color("#D97706")
	colorBlue   = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle marks the product name and section headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorIndigo)

	// SubtitleStyle is for secondary text next to a title.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	// SuccessStyle confirms a completed step.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// ErrorStyle prefixes fatal errors on stderr.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	// WarningStyle prefixes non-fatal problems the run survived.
	WarningStyle = lipgloss.NewStyle().
			Foreground(colorAmber)

	// CmdStyle is for runnable commands quoted in output.
	CmdStyle = lipgloss.NewStyle().
			Foreground(colorBlue)
)
