// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeCatalog lays out a template tree on disk. modules maps module id to
// its descriptor body; languages maps "module/lang" to the language
// descriptor body.
func writeCatalog(t *testing.T, modules map[string]string, languages map[string]string) string {
	t.Helper()
	root := t.TempDir()

	for id, doc := range modules {
		dir := filepath.Join(root, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		if err := os.WriteFile(filepath.Join(dir, ModuleDescriptorName), []byte(doc), 0o644); err != nil {
			t.Fatalf("write module descriptor: %v", err)
		}
	}
	for key, doc := range languages {
		dir := filepath.Join(root, filepath.FromSlash(key))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		if err := os.WriteFile(filepath.Join(dir, LanguageDescriptorName), []byte(doc), 0o644); err != nil {
			t.Fatalf("write language descriptor: %v", err)
		}
	}
	return root
}

func TestBuildDiscoversModulesAndLanguages(t *testing.T) {
	t.Parallel()

	root := writeCatalog(t,
		map[string]string{
			"writer":    "name: Writer\ntagline: Long-form writing\n",
			"marketing": "name: Marketing\ntagline: Campaign projects\n",
		},
		map[string]string{
			"writer/en":    "name: English\ncode: en\naliases:\n  - english\nfolders:\n  - inbox\n  - drafts\n",
			"marketing/en": "name: English\n",
			"marketing/de": "name: Deutsch\naliases:\n  - german\n  - deutsch\n",
		},
	)

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := snap.ModuleIDs(); !slices.Equal(got, []string{"marketing", "writer"}) {
		t.Errorf("module ids = %v", got)
	}

	writer, ok := snap.Module("writer")
	if !ok {
		t.Fatal("writer module missing")
	}
	if writer.Tagline != "Long-form writing" {
		t.Errorf("tagline = %q", writer.Tagline)
	}
	if got := writer.LanguageIDs(); !slices.Equal(got, []string{"en"}) {
		t.Errorf("writer languages = %v", got)
	}

	en, _ := writer.Language("en")
	if !slices.Equal(en.Folders, []string{"inbox", "drafts"}) {
		t.Errorf("folders = %v", en.Folders)
	}

	marketing, _ := snap.Module("marketing")
	if got := marketing.LanguageIDs(); !slices.Equal(got, []string{"de", "en"}) {
		t.Errorf("marketing languages = %v", got)
	}
}

func TestBuildSkipsDirectoriesWithoutDescriptor(t *testing.T) {
	t.Parallel()

	root := writeCatalog(t,
		map[string]string{"writer": "name: Writer\n"},
		nil,
	)
	// A plain directory next to a real module is not an error; it is
	// simply not a module.
	if err := os.MkdirAll(filepath.Join(root, "not-a-module"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := snap.ModuleIDs(); !slices.Equal(got, []string{"writer"}) {
		t.Errorf("module ids = %v", got)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := Build(t.TempDir())
	if !errors.Is(err, ErrCatalogEmpty) {
		t.Errorf("Build on empty root = %v, want ErrCatalogEmpty", err)
	}
}

func TestResolveAliasCaseSensitiveFirstMatch(t *testing.T) {
	t.Parallel()

	langs := []Language{
		{ID: "en", Aliases: []string{"english"}},
		{ID: "de", Aliases: []string{"german", "english"}}, // duplicate alias: first wins
	}

	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"english", "en"},
		{"English", ""}, // case-sensitive
		{"german", "de"},
		{"fr", ""},
	}

	for _, tt := range tests {
		if got := ResolveAlias(langs, tt.input); got != tt.want {
			t.Errorf("ResolveAlias(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCodeBecomesAlias(t *testing.T) {
	t.Parallel()

	root := writeCatalog(t,
		map[string]string{"writer": "name: Writer\n"},
		map[string]string{"writer/english": "name: English\ncode: en\n"},
	)

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	writer, _ := snap.Module("writer")
	if got := ResolveAlias(writer.Languages, "en"); got != "english" {
		t.Errorf("ResolveAlias(en) = %q, want english", got)
	}
}

func TestWorkflowPairs(t *testing.T) {
	t.Parallel()

	doc := "name: English\nexample_workflows:\n  - bw draft :: Start a new draft\n  - bw publish\n"
	root := writeCatalog(t,
		map[string]string{"writer": "name: Writer\n"},
		map[string]string{"writer/en": doc},
	)

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	writer, _ := snap.Module("writer")
	en, _ := writer.Language("en")

	want := []Workflow{
		{Command: "bw draft", Description: "Start a new draft"},
		{Command: "bw publish", Description: ""},
	}
	if !slices.Equal(en.Workflows, want) {
		t.Errorf("workflows = %v, want %v", en.Workflows, want)
	}
}

func TestFetchCleansUpOnCloneFailure(t *testing.T) {
	orig := cloneSource
	t.Cleanup(func() { cloneSource = orig })

	var cloneDir string
	cloneSource = func(_ context.Context, dir, _ string) error {
		cloneDir = dir
		return errors.New("remote hung up")
	}

	_, _, err := Fetch(context.Background(), "https://example.invalid/templates.git")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Fetch = %v, want ErrSourceUnavailable", err)
	}
	if _, statErr := os.Stat(cloneDir); !os.IsNotExist(statErr) {
		t.Errorf("partial checkout %s was not removed", cloneDir)
	}
}

func TestFetchReturnsWorkingCleanup(t *testing.T) {
	orig := cloneSource
	t.Cleanup(func() { cloneSource = orig })

	cloneSource = func(_ context.Context, dir, _ string) error {
		return os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644)
	}

	dir, cleanup, err := Fetch(context.Background(), "https://example.invalid/templates.git")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker")); err != nil {
		t.Fatalf("checkout missing marker: %v", err)
	}

	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("cleanup did not remove the checkout directory")
	}
}
