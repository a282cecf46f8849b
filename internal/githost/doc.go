// SPDX-License-Identifier: MPL-2.0

// Package githost is the collaborator boundary to the remote repository
// host. The wizard core never inspects host-specific error codes; every
// operation returns structured data or a failure the caller maps to a
// remediation message.
//
// File organization:
//   - client.go: REST client (auth status, current user, repo exists/list/create)
//   - git.go: repository transfer (clone, init, commit, push) via go-git
package githost
