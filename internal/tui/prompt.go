// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitleStyle = lipgloss.NewStyle().Bold(true)
	menuIndexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	menuHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type (
	// MenuItem is one selectable entry in a numbered menu.
	MenuItem struct {
		// Label is the display text.
		Label string
		// Hint is optional secondary text shown after the label.
		Hint string
	}

	// Prompter renders interactive prompts. The resolver layer depends on
	// this through an interface so tests can script answers.
	Prompter struct {
		cfg Config
	}
)

// NewPrompter creates a Prompter with the given configuration.
func NewPrompter(cfg Config) *Prompter {
	return &Prompter{cfg: cfg}
}

// Line asks for a single line of text. def is pre-filled as the initial
// value; an empty submission returns def.
func (p *Prompter) Line(title, placeholder, def string) (string, error) {
	value := def

	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)

	form := huh.NewForm(huh.NewGroup(input)).
		WithAccessible(p.cfg.Accessible)

	if err := form.Run(); err != nil {
		return "", mapHuhErr(err)
	}

	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(title string, def bool) (bool, error) {
	value := def

	confirm := huh.NewConfirm().
		Title(title).
		Value(&value)

	form := huh.NewForm(huh.NewGroup(confirm)).
		WithAccessible(p.cfg.Accessible)

	if err := form.Run(); err != nil {
		return false, mapHuhErr(err)
	}
	return value, nil
}

// Menu renders a numbered menu and reads the user's raw choice line.
// Interpretation of the answer (index, identifier, alias, trigger word,
// forgiving fallback) belongs to the resolver, not the prompt layer, so
// the raw string is returned unparsed. def is the 1-based default index
// used when the user submits nothing.
func (p *Prompter) Menu(title string, items []MenuItem, def int) (string, error) {
	var menu strings.Builder
	menu.WriteString(menuTitleStyle.Render(title) + "\n")
	for i, item := range items {
		line := fmt.Sprintf("  %s %s", menuIndexStyle.Render(fmt.Sprintf("%d.", i+1)), item.Label)
		if item.Hint != "" {
			line += " " + menuHintStyle.Render("— "+item.Hint)
		}
		menu.WriteString(line + "\n")
	}
	fmt.Fprint(p.cfg.Output, menu.String())

	var value string
	input := huh.NewInput().
		Title(fmt.Sprintf("Choice [%d]", def)).
		Value(&value)

	form := huh.NewForm(huh.NewGroup(input)).
		WithAccessible(p.cfg.Accessible)

	if err := form.Run(); err != nil {
		return "", mapHuhErr(err)
	}
	return strings.TrimSpace(value), nil
}
