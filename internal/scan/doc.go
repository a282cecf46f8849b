// SPDX-License-Identifier: MPL-2.0

// Package scan extracts values from the constrained descriptor format used
// by template catalogs. The grammar is a deliberately small subset of a
// YAML-like document: top-level `key: value` scalars, `- item` sequences
// indented under a bare `key:` line, and literal blocks introduced by
// `key: |`.
//
// The scanner is line-oriented with explicit states (outside a section,
// inside an array, inside a block) rather than a recursive parser. This is
// intentional: descriptor files must stay within the subset, and a full
// structured-document parser would accept inputs this format rejects.
package scan
