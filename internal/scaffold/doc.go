// SPDX-License-Identifier: MPL-2.0

// Package scaffold orchestrates one wizard run: opportunistic update
// check, host prerequisite check, catalog fetch, module/language/identity
// resolution, then the selected materialization action. Control flow is
// strictly sequential; the only shared state is the preference store. The
// catalog checkout is temporary and removed on every exit path.
//
// File organization:
//   - executor.go: run orchestration and the per-action dispatch
//   - materialize.go: template-tree copying and placeholder substitution
package scaffold
