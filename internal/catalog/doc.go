// SPDX-License-Identifier: MPL-2.0

// Package catalog discovers the modules and languages offered by a template
// source. A catalog snapshot is built once per invocation from a freshly
// fetched checkout of the template repository and is immutable afterwards;
// the checkout directory is removed on every exit path via the cleanup
// function returned by Fetch.
//
// File organization:
//   - catalog.go: snapshot types, directory discovery, alias resolution
//   - source.go: template source fetch (shallow clone into a temp dir)
package catalog
