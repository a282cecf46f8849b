// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source.Owner == "" || cfg.Source.Repo == "" {
		t.Errorf("expected default source, got %+v", cfg.Source)
	}
	if len(cfg.CustomTriggers) == 0 {
		t.Error("expected default custom triggers")
	}
	if cfg.FallbackProjectName == "" {
		t.Error("expected default fallback project name")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "source:\n  owner: myorg\n  repo: my-templates\nprojects_root: /tmp/books\ncustom_triggers:\n  - mine\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source.Owner != "myorg" || cfg.Source.Repo != "my-templates" {
		t.Errorf("source = %+v, want myorg/my-templates", cfg.Source)
	}
	if cfg.ProjectsRoot != "/tmp/books" {
		t.Errorf("projects_root = %q", cfg.ProjectsRoot)
	}
	if len(cfg.CustomTriggers) != 1 || cfg.CustomTriggers[0] != "mine" {
		t.Errorf("custom_triggers = %v, want [mine]", cfg.CustomTriggers)
	}
}

func TestCloneURL(t *testing.T) {
	t.Parallel()

	s := SourceConfig{Owner: "acme", Repo: "templates"}
	if got, want := s.CloneURL(), "https://github.com/acme/templates.git"; got != want {
		t.Errorf("CloneURL = %q, want %q", got, want)
	}
}
