// SPDX-License-Identifier: MPL-2.0

// Package selfupdate implements self-update for the bookwright CLI: a
// throttled best-effort version check, segment-wise numeric version
// comparison, and atomic binary replacement with backup followed by
// re-invocation of the original command line.
//
// File organization:
//   - version.go: dotted-numeric version parsing and ordering
//   - check.go: remote version lookup and 24-hour check throttling
//   - selfupdate.go: Updater facade (download, validate, backup, replace)
//   - restart_unix.go / restart_windows.go: process re-invocation
package selfupdate
