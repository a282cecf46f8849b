// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookwright-cli/internal/config"
)

// newConfigCommand creates the `bookwright config` command group.
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bookwright configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

// newConfigShowCommand creates `bookwright config show`, which prints the
// effective configuration after defaults, file, and environment merging.
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return fatal(cmd.ErrOrStderr(), err)
			}

			dir, err := config.ConfigDir()
			if err != nil {
				dir = "(unknown)"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("bookwright configuration"))
			fmt.Fprintln(out, SubtitleStyle.Render("config dir: ")+dir)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "template source:      "+CmdStyle.Render(cfg.Source.CloneURL()))
			fmt.Fprintln(out, "host API:             "+cfg.Host.APIBaseURL)
			fmt.Fprintln(out, "token env var:        "+cfg.Host.TokenEnv)
			fmt.Fprintln(out, "projects root:        "+cfg.ProjectsRoot)
			fmt.Fprintln(out, "fallback project:     "+cfg.FallbackProjectName)
			fmt.Fprintln(out, "custom triggers:      "+strings.Join(cfg.CustomTriggers, ", "))
			fmt.Fprintf(out, "verbose:              %v\n", cfg.Verbose)
			return nil
		},
	}
}
