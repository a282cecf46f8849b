// SPDX-License-Identifier: MPL-2.0

// Package prefs persists sticky "last used" preferences between runs.
// Each preference is a single plain-text file under the state directory;
// a missing or unreadable file is treated as an absent value, never an
// error. Values are written only after a successful resolution, so a
// failed run never pollutes the store.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// KeyModule caches the last selected module identifier.
	KeyModule = "module"
	// KeyLanguage caches the last selected language identifier.
	KeyLanguage = "language"
	// KeyAuthor caches the last used author name.
	KeyAuthor = "author"
	// KeyLastUpdateCheck holds the Unix timestamp of the last update check.
	KeyLastUpdateCheck = "last-update-check"
)

// stateDirOverride allows tests to override the state directory.
// os.UserHomeDir() doesn't reliably respect the HOME env var on all
// platforms, so tests set this instead.
var stateDirOverride string

// SetStateDirOverride sets a custom state directory path, primarily for
// tests. Call Reset from test cleanup to restore the default.
func SetStateDirOverride(dir string) {
	stateDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	stateDirOverride = ""
}

// DefaultDir returns the preference state directory (~/.bookwright).
func DefaultDir() (string, error) {
	if stateDirOverride != "" {
		return stateDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".bookwright"), nil
}

// Store reads and writes preference files under a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Open creates a Store rooted at the default state directory.
func Open() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir), nil
}

// Get returns the stored value for key. The second return is false when
// the value is absent, unreadable, or empty.
func (s *Store) Get(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false
	}
	return value, true
}

// Set writes value for key, creating the state directory if needed.
// Last write wins; no locking is needed for a single interactive session.
func (s *Store) Set(key, value string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// LastUpdateCheck returns the time of the last update check. The second
// return is false when no check has been recorded or the timestamp is
// malformed.
func (s *Store) LastUpdateCheck() (time.Time, bool) {
	raw, ok := s.Get(KeyLastUpdateCheck)
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// TouchUpdateCheck records now as the last update-check time. It is called
// on every check attempt regardless of outcome, bounding check frequency
// even across failures.
func (s *Store) TouchUpdateCheck(now time.Time) error {
	return s.Set(KeyLastUpdateCheck, strconv.FormatInt(now.Unix(), 10))
}
