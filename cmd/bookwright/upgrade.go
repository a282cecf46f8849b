// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bookwright-cli/internal/selfupdate"
	"bookwright-cli/internal/tui"
)

// upgradeParams bundles the dependencies and flags for the upgrade
// command so the core logic in runUpgrade can be tested without a real
// Cobra command or live release endpoint.
type upgradeParams struct {
	stdout  io.Writer
	updater *selfupdate.Updater
	confirm func(title string, def bool) (bool, error)
	check   bool // --check mode: report availability without installing
	yes     bool // --yes flag: skip confirmation prompt
	restart bool // re-invoke the tool after a successful replace
}

// newUpgradeCommand creates the `bookwright upgrade` command, which
// replaces the binary with the latest published release.
func newUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Update bookwright to the latest release",
		Long: `Update bookwright to the latest published release.

The new binary is downloaded next to the current one and swapped in with
a rename; the previous binary is kept as ` + CmdStyle.Render("bookwright.bak") + ` so it can be
restored manually if the new version misbehaves.`,
		Example: `  # Upgrade to the latest release
  bookwright upgrade

  # Check for updates without installing
  bookwright upgrade --check

  # Skip the confirmation prompt
  bookwright upgrade --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			checkFlag, _ := cmd.Flags().GetBool("check")
			yesFlag, _ := cmd.Flags().GetBool("yes")

			prompter := tui.NewPrompter(tui.DefaultConfig())
			p := upgradeParams{
				stdout:  cmd.OutOrStdout(),
				updater: selfupdate.NewUpdater(Version),
				confirm: prompter.Confirm,
				check:   checkFlag,
				yes:     yesFlag,
			}

			if err := runUpgrade(cmd.Context(), p); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+err.Error())
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Check for an available upgrade without installing")
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	return cmd
}

// runUpgrade is the core upgrade logic, separated from Cobra for
// testability.
func runUpgrade(ctx context.Context, p upgradeParams) error {
	remote, ok := p.updater.Available(ctx)
	if !ok {
		fmt.Fprintf(p.stdout, "bookwright %s is up to date.\n", Version)
		return nil
	}

	if p.check {
		fmt.Fprintf(p.stdout, "Version %s is available (current: %s). Run %s to install it.\n",
			remote, Version, CmdStyle.Render("bookwright upgrade"))
		return nil
	}

	if !p.yes {
		ok, err := p.confirm(fmt.Sprintf("Upgrade from %s to %s?", Version, remote), true)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(p.stdout, "Upgrade cancelled.")
			return nil
		}
	}

	installed, err := p.updater.Apply(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Upgraded to %s.", installed)))

	if p.restart {
		// Restart supplies argv[0] itself, so it gets the arguments
		// after the program name, minus the update flag.
		return selfupdate.Restart(selfupdate.StripUpdateFlag(os.Args[1:], "--update"))
	}
	return nil
}

// runSelfUpdate handles the root --update flag: apply the latest release
// and re-invoke the tool with the original arguments minus the update
// flag, so the user's original intent resumes under the new version.
// resume is true when the run should continue under the current version:
// an update payload that fails validation aborts the update, never the
// overall run.
func runSelfUpdate(ctx context.Context, p upgradeParams, stderr io.Writer) (resume bool, err error) {
	if err := runUpgrade(ctx, p); err != nil {
		if errors.Is(err, selfupdate.ErrUpdatePayloadInvalid) {
			fmt.Fprintln(stderr, WarningStyle.Render("Warning: ")+
				"update aborted, continuing with the current version: "+err.Error())
			return true, nil
		}
		return false, fatal(stderr, err)
	}
	return false, nil
}
