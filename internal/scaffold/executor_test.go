// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookwright-cli/internal/config"
	"bookwright-cli/internal/githost"
	"bookwright-cli/internal/prefs"
	"bookwright-cli/internal/tui"
)

// fakeHost is a scripted Host implementation.
type fakeHost struct {
	authErr error
	user    githost.User
	repos   []githost.Repo
	exists  map[string]bool

	created []string
}

func (h *fakeHost) AuthStatus(context.Context) error { return h.authErr }

func (h *fakeHost) CurrentUser(context.Context) (githost.User, error) { return h.user, nil }

func (h *fakeHost) RepoExists(_ context.Context, name string) (bool, error) {
	return h.exists[name], nil
}

func (h *fakeHost) ListRepos(context.Context) ([]githost.Repo, error) { return h.repos, nil }

func (h *fakeHost) CreateRepo(_ context.Context, name, _ string, _ bool) (githost.Repo, error) {
	h.created = append(h.created, name)
	return githost.Repo{Name: name, CloneURL: "https://example.test/" + name + ".git"}, nil
}

func (h *fakeHost) Token() string { return "t0ken" }

// scriptPrompter replays canned menu and confirm answers.
type scriptPrompter struct {
	menus    []string
	confirms []bool
}

func (p *scriptPrompter) Line(_, _, def string) (string, error) { return def, nil }

func (p *scriptPrompter) Confirm(_ string, def bool) (bool, error) {
	if len(p.confirms) == 0 {
		return def, nil
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptPrompter) Menu(_ string, _ []tui.MenuItem, _ int) (string, error) {
	if len(p.menus) == 0 {
		return "", nil
	}
	answer := p.menus[0]
	p.menus = p.menus[1:]
	return answer, nil
}

// writeCatalog lays out a minimal two-module catalog and returns its root.
func writeCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "marketing", "module.info"), "name: Marketing\ntagline: Plan launches\n")
	writeFile(t, filepath.Join(root, "marketing", "de", "language.info"),
		"name: Deutsch\naliases:\n  - german\nfolders:\n  - inbox\n  - drafts\ninbox_readme: |\n  Notizen hier ablegen.\nconfig_template: |\n  project: {{PROJECT_NAME}}\n  author: {{AUTHOR_NAME}}\n  created: {{DATE}}\nexample_workflows:\n  - make draft :: Start a draft\n")
	writeFile(t, filepath.Join(root, "marketing", "de", "outline.md"), "# Gliederung\n")
	writeFile(t, filepath.Join(root, "marketing", "en", "language.info"), "name: English\n")
	writeFile(t, filepath.Join(root, "writer", "module.info"), "name: Writer\n")
	writeFile(t, filepath.Join(root, "writer", "en", "language.info"), "name: English\n")

	return root
}

// stubSeams points the executor's network seams at local fakes and
// restores them afterwards. Tests using it must not run in parallel.
func stubSeams(t *testing.T, catalogRoot string) (commits, pushes, clones *[]string) {
	t.Helper()

	var committed, pushed, cloned []string

	origFetch, origCommit, origPush, origClone, origRender := fetchCatalog, initAndCommit, addRemoteAndPush, cloneRepo, renderMarkdown
	t.Cleanup(func() {
		fetchCatalog, initAndCommit, addRemoteAndPush, cloneRepo, renderMarkdown = origFetch, origCommit, origPush, origClone, origRender
	})

	fetchCatalog = func(context.Context, string) (string, func(), error) {
		return catalogRoot, func() {}, nil
	}
	initAndCommit = func(dir, _, _ string) error {
		committed = append(committed, dir)
		return nil
	}
	addRemoteAndPush = func(_ context.Context, _, remoteURL, _ string) error {
		pushed = append(pushed, remoteURL)
		return nil
	}
	cloneRepo = func(_ context.Context, url, dir, _ string) error {
		cloned = append(cloned, url)
		return os.MkdirAll(dir, 0o755)
	}
	renderMarkdown = func(in string) (string, error) { return in, nil }

	return &committed, &pushed, &cloned
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Source:              config.SourceConfig{Owner: "bookwright", Repo: "templates"},
		Host:                config.HostConfig{TokenEnv: "GITHUB_TOKEN"},
		ProjectsRoot:        t.TempDir(),
		FallbackProjectName: "NewProject",
		CustomTriggers:      []string{"custom", "own"},
	}
}

func TestRunNonInteractiveCreateFresh(t *testing.T) {
	root := writeCatalog(t)
	commits, pushes, _ := stubSeams(t, root)

	cfg := testConfig(t)
	store := prefs.NewStore(t.TempDir())
	host := &fakeHost{}
	var out bytes.Buffer

	exec := New(cfg, store, host, &scriptPrompter{}, WithOutput(&out),
		WithClock(func() time.Time { return time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC) }))

	err := exec.Run(context.Background(), RunOptions{
		Module:        "marketing",
		Language:      "de",
		Project:       "Launch",
		Author:        "Ada",
		Yes:           true,
		NoUpdateCheck: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	projectPath := filepath.Join(cfg.ProjectsRoot, "Launch")
	assertFile(t, filepath.Join(projectPath, SystemDirName, ProjectConfigName),
		"project: Launch\nauthor: Ada\ncreated: 2026-08-23\n")
	assertFile(t, filepath.Join(projectPath, "inbox", "README.md"), "Notizen hier ablegen.\n")
	assertFile(t, filepath.Join(projectPath, SystemDirName, "outline.md"), "# Gliederung\n")

	// All three preferences are written on a successful run.
	for key, want := range map[string]string{
		prefs.KeyModule:   "marketing",
		prefs.KeyLanguage: "de",
		prefs.KeyAuthor:   "Ada",
	} {
		if got, _ := store.Get(key); got != want {
			t.Errorf("preference %s = %q, want %q", key, got, want)
		}
	}

	if len(*commits) != 1 || len(host.created) != 1 || len(*pushes) != 1 {
		t.Errorf("publish steps = commit %v, create %v, push %v", *commits, host.created, *pushes)
	}
	if !strings.Contains(out.String(), "Example workflows") {
		t.Errorf("next-steps card missing from output:\n%s", out.String())
	}
}

func TestRunUnauthenticatedIsFatal(t *testing.T) {
	root := writeCatalog(t)
	stubSeams(t, root)

	host := &fakeHost{authErr: githost.ErrUnauthenticated}
	exec := New(testConfig(t), prefs.NewStore(t.TempDir()), host, &scriptPrompter{}, WithOutput(&bytes.Buffer{}))

	err := exec.Run(context.Background(), RunOptions{Yes: true, NoUpdateCheck: true})
	if !errors.Is(err, githost.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestRunCancelledAtConfirmation(t *testing.T) {
	root := writeCatalog(t)
	stubSeams(t, root)

	p := &scriptPrompter{
		menus:    []string{"1", "1"}, // module, language
		confirms: []bool{false},
	}
	exec := New(testConfig(t), prefs.NewStore(t.TempDir()), &fakeHost{}, p, WithOutput(&bytes.Buffer{}))

	err := exec.Run(context.Background(), RunOptions{Project: "Launch", Author: "Ada", NoUpdateCheck: true})
	if !Cancelled(err) {
		t.Fatalf("err = %v, want a cancelled run", err)
	}

	if _, statErr := os.Stat(filepath.Join(exec.cfg.ProjectsRoot, "Launch")); !os.IsNotExist(statErr) {
		t.Error("declined confirmation must not create the project")
	}
}

func TestRunCloneRemoteCollision(t *testing.T) {
	root := writeCatalog(t)
	_, _, clones := stubSeams(t, root)

	host := &fakeHost{
		user:   githost.User{Login: "ada"},
		exists: map[string]bool{"Launch": true},
	}
	exec := New(testConfig(t), prefs.NewStore(t.TempDir()), host, &scriptPrompter{}, WithOutput(&bytes.Buffer{}))

	err := exec.Run(context.Background(), RunOptions{
		Module:        "marketing",
		Language:      "de",
		Project:       "Launch",
		Author:        "Ada",
		Yes:           true,
		NoUpdateCheck: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(*clones) != 1 || !strings.Contains((*clones)[0], "ada/Launch") {
		t.Errorf("clones = %v, want the user's own Launch repository", *clones)
	}
}

func TestRunCustomModulePath(t *testing.T) {
	root := writeCatalog(t)
	_, _, clones := stubSeams(t, root)

	host := &fakeHost{
		repos: []githost.Repo{
			{Name: "novel-kit", Description: "my template", CloneURL: "https://example.test/novel-kit.git"},
			{Name: "other", CloneURL: "https://example.test/other.git"},
		},
	}
	p := &scriptPrompter{
		// "own" triggers the custom path; then pick the first repo.
		menus: []string{"use my own repo", "1"},
	}
	exec := New(testConfig(t), prefs.NewStore(t.TempDir()), host, p, WithOutput(&bytes.Buffer{}))

	err := exec.Run(context.Background(), RunOptions{Project: "Novel", NoUpdateCheck: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(*clones) != 1 || (*clones)[0] != "https://example.test/novel-kit.git" {
		t.Errorf("clones = %v, want the chosen template repository", *clones)
	}
}

func TestRunCustomModuleLocalCollision(t *testing.T) {
	root := writeCatalog(t)
	_, _, clones := stubSeams(t, root)

	host := &fakeHost{
		repos: []githost.Repo{
			{Name: "novel-kit", CloneURL: "https://example.test/novel-kit.git"},
			{Name: "other", CloneURL: "https://example.test/other.git"},
		},
	}
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.ProjectsRoot, "Novel"), 0o755); err != nil {
		t.Fatal(err)
	}

	// The collision menu on the custom path has no template-refresh
	// entries; an answer past the offered options opens the existing
	// project instead of cloning over it.
	p := &scriptPrompter{
		menus: []string{"use my own repo", "1", "3"},
	}
	var out bytes.Buffer
	exec := New(cfg, prefs.NewStore(t.TempDir()), host, p, WithOutput(&out))

	err := exec.Run(context.Background(), RunOptions{Project: "Novel", NoUpdateCheck: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*clones) != 0 {
		t.Errorf("clones = %v, want none into an existing project", *clones)
	}
	if !strings.Contains(out.String(), "existing project") {
		t.Errorf("output = %q, want the reuse notice", out.String())
	}
}

func TestPublishFailureIsWarning(t *testing.T) {
	root := writeCatalog(t)
	stubSeams(t, root)
	initAndCommit = func(string, string, string) error { return errors.New("index locked") }

	var out bytes.Buffer
	exec := New(testConfig(t), prefs.NewStore(t.TempDir()), &fakeHost{}, &scriptPrompter{}, WithOutput(&out))

	err := exec.Run(context.Background(), RunOptions{
		Module:        "marketing",
		Language:      "de",
		Project:       "Launch",
		Author:        "Ada",
		Yes:           true,
		NoUpdateCheck: true,
	})
	if err != nil {
		t.Fatalf("post-materialization failures must downgrade to warnings, got %v", err)
	}
	if !strings.Contains(out.String(), "Warning:") {
		t.Errorf("expected a warning in output:\n%s", out.String())
	}
}
