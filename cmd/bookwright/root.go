// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bookwright.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bookwright-cli/internal/config"
	"bookwright-cli/internal/githost"
	"bookwright-cli/internal/issue"
	"bookwright-cli/internal/prefs"
	"bookwright-cli/internal/scaffold"
	"bookwright-cli/internal/selfupdate"
	"bookwright-cli/internal/tui"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose diagnostic output.
	verbose bool

	flagProject       string
	flagAuthor        string
	flagModule        string
	flagLanguage      string
	flagYes           bool
	flagUpdate        bool
	flagNoUpdateCheck bool

	// rootCmd is the wizard itself: running bookwright with no subcommand
	// starts a scaffolding run.
	rootCmd = &cobra.Command{
		Use:   "bookwright",
		Short: "Scaffold writing projects from a template catalog",
		Long: TitleStyle.Render("bookwright") + SubtitleStyle.Render(" - a project-scaffolding wizard") + `

bookwright creates writing projects from a remote catalog of module and
language template bundles, sets up version control, and publishes a
repository for each new project.

` + SubtitleStyle.Render("Examples:") + `
  bookwright                                Run the interactive wizard
  bookwright --module marketing --yes       Non-interactive scaffold
  bookwright --project Launch --author Ada  Preset identity fields
  bookwright upgrade --check                Check for a newer release`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			// --update short-circuits everything else; only a recovered
			// update failure falls through to the wizard.
			if flagUpdate {
				p := upgradeParams{
					stdout:  cmd.OutOrStdout(),
					updater: selfupdate.NewUpdater(Version),
					yes:     true,
					restart: true,
				}
				resume, err := runSelfUpdate(cmd.Context(), p, cmd.ErrOrStderr())
				if err != nil || !resume {
					return err
				}
			}
			return runWizard(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.Flags().StringVar(&flagProject, "project", "", "project name")
	rootCmd.Flags().StringVar(&flagAuthor, "author", "", "author name")
	rootCmd.Flags().StringVar(&flagModule, "module", "", "module identifier")
	rootCmd.Flags().StringVar(&flagLanguage, "language", "", "language identifier or alias")
	rootCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "non-interactive mode, auto-confirm every prompt")
	rootCmd.Flags().BoolVar(&flagUpdate, "update", false, "update bookwright and re-run")
	rootCmd.Flags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "skip the opportunistic update check")

	rootCmd.AddCommand(newUpgradeCommand())
	rootCmd.AddCommand(newConfigCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// runWizard assembles the executor's dependencies and runs one wizard
// invocation.
func runWizard(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fatal(stderr, err)
	}

	store, err := prefs.Open()
	if err != nil {
		return fatal(stderr, err)
	}

	host := githost.NewClient(
		githost.WithBaseURL(cfg.Host.APIBaseURL),
		githost.WithToken(cfg.Host.Token()),
		githost.WithUserAgent("bookwright/"+Version),
	)

	prompterCfg := tui.DefaultConfig()
	prompterCfg.Output = stdout
	prompter := tui.NewPrompter(prompterCfg)

	logger := log.New(io.Discard)
	if verbose || cfg.Verbose {
		logger = log.New(stderr)
		logger.SetLevel(log.DebugLevel)
	}

	exec := scaffold.New(cfg, store, host, prompter,
		scaffold.WithOutput(stdout),
		scaffold.WithLogger(logger),
		scaffold.WithReleases(selfupdate.NewClient()),
		scaffold.WithVersion(Version),
	)

	err = exec.Run(ctx, scaffold.RunOptions{
		Project:       flagProject,
		Author:        flagAuthor,
		Module:        flagModule,
		Language:      flagLanguage,
		Yes:           flagYes,
		NoUpdateCheck: flagNoUpdateCheck,
	})
	if err != nil {
		// Backing out at a prompt or confirmation is a normal outcome.
		if errors.Is(err, tui.ErrCancelled) || scaffold.Cancelled(err) {
			fmt.Fprintln(stdout, SubtitleStyle.Render("Cancelled."))
			return nil
		}
		return fatal(stderr, err)
	}
	return nil
}

// fatal prints a user-facing error (with remediation when available) and
// returns an ExitError carrying exit code 1.
func fatal(stderr io.Writer, err error) error {
	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+err.Error())
	if ae, ok := issue.Actionable(err); ok {
		if remediation := ae.Remediation(); remediation != "" {
			fmt.Fprintln(stderr, remediation)
		}
	}
	return &ExitError{Code: 1, Err: err}
}
