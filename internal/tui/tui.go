// SPDX-License-Identifier: MPL-2.0

// Package tui provides the wizard's interactive prompts: free-text input,
// yes/no confirmation, and the numbered selection menu. It wraps
// charmbracelet/huh for the form components and falls back to accessible
// mode when stdin is not a terminal, so prompts degrade to plain
// line-reads under pipes and in CI.
package tui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt. Cancellation at
// a confirmation point is a normal outcome (exit 0), not a failure.
var ErrCancelled = errors.New("cancelled by user")

// Config holds common configuration for prompt components.
type Config struct {
	// Accessible enables plain line-based prompts for screen readers
	// and non-terminal stdin.
	Accessible bool
	// Output is where prompts and menus are written.
	Output io.Writer
}

// DefaultConfig enables accessible mode when stdin is not a terminal or
// the ACCESSIBLE environment variable is set.
func DefaultConfig() Config {
	accessible := !isInputTerminal() || os.Getenv("ACCESSIBLE") != ""
	return Config{
		Accessible: accessible,
		Output:     os.Stdout,
	}
}

// isInputTerminal reports whether stdin is attached to a terminal.
func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// mapHuhErr converts huh's abort error into the package sentinel.
func mapHuhErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}
