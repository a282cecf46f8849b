// SPDX-License-Identifier: MPL-2.0

// Package resolve turns four independent input sources (explicit flags, a
// persisted preference cache, interactive prompts, and catalog defaults)
// into a single validated selection per field, together with the
// provenance of each choice. Resolvers are pure functions over their
// inputs: state flows in as arguments and out as return values, never
// through package globals.
//
// Selection precedence, first applicable rule wins:
//  1. single valid option: selected silently
//  2. explicit flag: validated strictly, fatal on mismatch (a flag is a
//     contract, not a hint)
//  3. stale cache values are discarded, never silently selected
//  4. non-interactive with a valid cache: cached value
//  5. non-interactive without cache: first catalog option
//  6. interactive numbered menu, forgiving of malformed answers
//
// File organization:
//   - resolver.go: module/language selection state machine
//   - identity.go: project name, collision handling, author resolution
package resolve
