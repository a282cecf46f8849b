// SPDX-License-Identifier: MPL-2.0

//go:build windows

package selfupdate

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Restart launches the updated binary and exits with its status. args is
// the argument list without the program name. Windows cannot replace a
// running process image, so this is the "restart-signal" variant: run the
// child to completion, then exit.
func Restart(args []string) error {
	execPath, err := resolveExecPath()
	if err != nil {
		return err
	}

	cmd := exec.Command(execPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("re-invoking %s: %w", execPath, err)
	}
	os.Exit(0)
	return nil
}
