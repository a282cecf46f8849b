// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package selfupdate

import (
	"fmt"
	"os"
	"syscall"
)

// Restart replaces the current process image with the updated binary so
// the user's original command line resumes under the new version. args is
// the argument list without the program name; Restart supplies argv[0]
// itself. It only returns on error.
func Restart(args []string) error {
	execPath, err := resolveExecPath()
	if err != nil {
		return err
	}
	argv := append([]string{execPath}, args...)
	if err := syscall.Exec(execPath, argv, os.Environ()); err != nil {
		return fmt.Errorf("re-invoking %s: %w", execPath, err)
	}
	return nil
}
