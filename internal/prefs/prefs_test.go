// SPDX-License-Identifier: MPL-2.0

package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetMissingIsAbsent(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, ok := s.Get(KeyModule); ok {
		t.Error("Get on a missing store should report absent")
	}
}

func TestSetThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	if err := s.Set(KeyModule, "writer"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := s.Get(KeyModule)
	if !ok || got != "writer" {
		t.Errorf("Get = (%q, %v), want (writer, true)", got, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	if err := s.Set(KeyLanguage, "en"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyLanguage, "de"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, _ := s.Get(KeyLanguage); got != "de" {
		t.Errorf("Get = %q, want de", got)
	}
}

func TestEmptyValueIsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, KeyAuthor), []byte("\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewStore(dir)
	if _, ok := s.Get(KeyAuthor); ok {
		t.Error("whitespace-only file should report absent")
	}
}

func TestUpdateCheckTimestamp(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())

	if _, ok := s.LastUpdateCheck(); ok {
		t.Error("fresh store should have no recorded check")
	}

	now := time.Unix(1700000000, 0)
	if err := s.TouchUpdateCheck(now); err != nil {
		t.Fatalf("TouchUpdateCheck: %v", err)
	}

	got, ok := s.LastUpdateCheck()
	if !ok || !got.Equal(now) {
		t.Errorf("LastUpdateCheck = (%v, %v), want (%v, true)", got, ok, now)
	}
}

func TestMalformedTimestampIsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, KeyLastUpdateCheck), []byte("not-a-number"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewStore(dir)
	if _, ok := s.LastUpdateCheck(); ok {
		t.Error("malformed timestamp should report absent")
	}
}
