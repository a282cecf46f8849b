// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"strconv"
	"strings"
)

// IsValid reports whether v is a well-formed dotted-numeric version: one
// or more non-empty segments of decimal digits, with an optional leading
// "v". Versions here are not semver; two-segment versions like "1.2" are
// legal and must order numerically against three-segment ones.
func IsValid(v string) bool {
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return false
	}
	for _, seg := range strings.Split(v, ".") {
		if seg == "" {
			return false
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return false
		}
	}
	return true
}

// Compare orders two dotted-numeric versions segment-wise, returning -1,
// 0, or 1. Missing segments count as zero, so "1.2" equals "1.2.0".
// Lexical string comparison would order "1.10.0" before "1.9.9"; this
// comparison must not.
func Compare(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")

	n := max(len(as), len(bs))
	for i := range n {
		av := segment(as, i)
		bv := segment(bs, i)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

// IsNewer reports whether a is strictly newer than b. Equal versions are
// not newer in either direction.
func IsNewer(a, b string) bool {
	return Compare(a, b) > 0
}

// segment returns the numeric value of segs[i], or 0 when the index is
// out of range or the segment is not numeric.
func segment(segs []string, i int) int {
	if i >= len(segs) {
		return 0
	}
	n, err := strconv.Atoi(segs[i])
	if err != nil {
		return 0
	}
	return n
}
