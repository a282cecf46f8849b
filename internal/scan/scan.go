// SPDX-License-Identifier: MPL-2.0

package scan

import "strings"

// Scalar returns the single-line value of a top-level `key: value` entry,
// with surrounding quote characters stripped. The match is anchored to the
// start of the line, so `name` never matches `module_name`. A missing key,
// a bare `key:` with no value, or a `key: |` block introducer all yield "".
func Scalar(doc, key string) string {
	for _, line := range strings.Split(doc, "\n") {
		rest, ok := topLevelEntry(line, key)
		if !ok {
			continue
		}
		if rest == "|" {
			// Block introducer, not a scalar.
			return ""
		}
		return stripQuotes(rest)
	}
	return ""
}

// Array returns the ordered items listed under a top-level `key:` line,
// where each item is an indented `- value` line. Scanning stops at the next
// top-level key regardless of what follows it. Quotes are stripped from
// each item. A missing key or a key with no items yields an empty slice,
// never an error.
func Array(doc, key string) []string {
	lines := strings.Split(doc, "\n")

	start := -1
	for i, line := range lines {
		rest, ok := topLevelEntry(line, key)
		if ok && rest == "" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var items []string
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !isIndented(line) {
			// Next top-level key terminates the array.
			break
		}
		trimmed := strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(trimmed, "- "); ok {
			items = append(items, stripQuotes(strings.TrimSpace(item)))
		}
	}
	return items
}

// BlockScalar returns the literal multi-line text introduced by a top-level
// `key: |` line. The leading whitespace of the first content line becomes
// the block's base indent and is stripped from every line; relative
// indentation beyond the base and internal blank lines are preserved.
// Scanning stops at the first non-blank line that does not carry at least
// the base indent. Trailing blank lines are trimmed.
func BlockScalar(doc, key string) string {
	lines := strings.Split(doc, "\n")

	start := -1
	for i, line := range lines {
		rest, ok := topLevelEntry(line, key)
		if ok && rest == "|" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	var (
		indent  string
		content []string
	)
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			if indent == "" {
				// Blank lines before the first content line carry no
				// indent information; skip them.
				continue
			}
			content = append(content, "")
			continue
		}
		if indent == "" {
			if !isIndented(line) {
				// The block is empty: the next top-level key follows
				// immediately.
				break
			}
			indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		}
		if !strings.HasPrefix(line, indent) {
			break
		}
		content = append(content, line[len(indent):])
	}

	// Blanks between the block and the next key are not part of the block.
	for len(content) > 0 && content[len(content)-1] == "" {
		content = content[:len(content)-1]
	}
	return strings.Join(content, "\n")
}

// topLevelEntry reports whether line is a top-level entry for key and, if
// so, returns the trimmed remainder after the colon.
func topLevelEntry(line, key string) (string, bool) {
	if isIndented(line) {
		return "", false
	}
	rest, ok := strings.CutPrefix(line, key+":")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// isIndented reports whether line begins with whitespace. Blank lines are
// not considered indented.
func isIndented(line string) bool {
	if line == "" {
		return false
	}
	return line[0] == ' ' || line[0] == '\t'
}

// stripQuotes removes one matching pair of surrounding single or double
// quotes, if present.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
