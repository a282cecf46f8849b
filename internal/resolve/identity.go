// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bookwright-cli/internal/githost"
	"bookwright-cli/internal/prefs"
	"bookwright-cli/internal/tui"
)

type (
	// Action is the materialization strategy chosen during identity
	// resolution.
	Action string

	// Host is the repository-host surface identity resolution needs.
	// Implemented by githost.Client; nil disables remote checks.
	Host interface {
		CurrentUser(ctx context.Context) (githost.User, error)
		RepoExists(ctx context.Context, name string) (bool, error)
	}

	// IdentityRequest carries the inputs for project-name resolution.
	IdentityRequest struct {
		// Explicit is the --project flag value ("" when absent).
		Explicit string
		// NonInteractive suppresses all prompting.
		NonInteractive bool
		// ProjectsRoot is the directory new projects are created under.
		ProjectsRoot string
		// Fallback is the project name used when sanitization yields
		// nothing.
		Fallback string
		// MarkerDir is the subdirectory name that identifies a scaffolded
		// project during the sibling scan.
		MarkerDir string
		// RefreshActions enables the template-refresh options on a local
		// collision (update-in-place, copy-from-sibling). They only apply
		// when a catalog template backs the project; a custom template
		// carries its own layout and cannot be refreshed from the catalog.
		RefreshActions bool
	}

	// Identity is a resolved project name plus the materialization action
	// the collision check selected.
	Identity struct {
		// Name is the sanitized project name, also used as the remote
		// repository name.
		Name string
		// Path is the local project directory.
		Path string
		// Action is the selected materialization strategy.
		Action Action
		// SiblingPath is the source project directory when Action is
		// ActionCopyFromSibling.
		SiblingPath string
	}

	// AuthorRequest carries the inputs for author resolution.
	AuthorRequest struct {
		// Explicit is the --author flag value ("" when absent).
		Explicit string
		// NonInteractive suppresses all prompting.
		NonInteractive bool
	}
)

const (
	// ActionCreateFresh materializes a new project from the template.
	ActionCreateFresh Action = "create-fresh"
	// ActionReuseExisting opens the existing local project unchanged.
	ActionReuseExisting Action = "reuse-existing"
	// ActionCloneRemote clones the existing remote repository.
	ActionCloneRemote Action = "clone-remote"
	// ActionCopyFromSibling copies the template system from another local
	// project.
	ActionCopyFromSibling Action = "copy-from-sibling"
	// ActionUpdateInPlace replaces the template system directories while
	// leaving user content untouched.
	ActionUpdateInPlace Action = "update-in-place"

	// anonymousAuthor is used when no author can be determined
	// non-interactively.
	anonymousAuthor = "Anonymous"
)

// SanitizeProjectName strips every character outside [A-Za-z0-9_-] from
// input. An input that sanitizes to nothing yields fallback: the name is
// used as a directory and repository name, so it can never be empty.
func SanitizeProjectName(input, fallback string) string {
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// ResolveIdentity resolves the project name and selects a materialization
// action. A name is only "available" when absent both locally and on the
// remote host; collisions branch into recovery actions instead of
// failing. Unlike module and language, the name itself is never cached:
// explicit beats interactive, and non-interactive runs without a flag use
// the fallback name.
func ResolveIdentity(ctx context.Context, req IdentityRequest, host Host, p Prompter) (Identity, error) {
	candidate := req.Explicit
	if candidate == "" && !req.NonInteractive {
		answer, err := p.Line("What should the project be called?", req.Fallback, req.Fallback)
		if err != nil {
			return Identity{}, err
		}
		candidate = answer
	}

	for {
		name := SanitizeProjectName(candidate, req.Fallback)
		path := filepath.Join(req.ProjectsRoot, name)

		if dirExists(path) {
			id, retry, err := resolveLocalCollision(req, name, path, p)
			if err != nil {
				return Identity{}, err
			}
			if retry {
				answer, err := p.Line("New project name", "", "")
				if err != nil {
					return Identity{}, err
				}
				candidate = answer
				continue
			}
			return id, nil
		}

		if host != nil {
			taken, err := host.RepoExists(ctx, name)
			if err != nil {
				return Identity{}, err
			}
			if taken {
				id, retry, err := resolveRemoteCollision(req, name, path, p)
				if err != nil {
					return Identity{}, err
				}
				if retry {
					answer, err := p.Line("New project name", "", "")
					if err != nil {
						return Identity{}, err
					}
					candidate = answer
					continue
				}
				return id, nil
			}
		}

		return Identity{Name: name, Path: path, Action: ActionCreateFresh}, nil
	}
}

// resolveLocalCollision handles a name that already exists as a local
// directory. retry means the caller should ask for a different name and
// run the availability check again.
func resolveLocalCollision(req IdentityRequest, name, path string, p Prompter) (Identity, bool, error) {
	if req.NonInteractive {
		return Identity{Name: name, Path: path, Action: ActionReuseExisting}, false, nil
	}

	items := []tui.MenuItem{
		{Label: "Choose a different name"},
		{Label: "Open the existing project", Hint: path},
	}
	actions := []Action{"", ActionReuseExisting}

	var siblings []string
	if req.RefreshActions {
		items = append(items, tui.MenuItem{Label: "Refresh its template system in place", Hint: "keeps your content"})
		actions = append(actions, ActionUpdateInPlace)

		siblings = FindSiblings(req.ProjectsRoot, req.MarkerDir, name)
		if len(siblings) > 0 {
			items = append(items, tui.MenuItem{Label: "Copy the template system from a sibling project"})
			actions = append(actions, ActionCopyFromSibling)
		}
	}

	raw, err := p.Menu("A project named "+name+" already exists here. What now?", items, 2)
	if err != nil {
		return Identity{}, false, err
	}

	action := pickAction(raw, actions, 2)
	switch action {
	case "":
		return Identity{}, true, nil
	case ActionCopyFromSibling:
		sibling, err := pickSibling(req.ProjectsRoot, siblings, p)
		if err != nil {
			return Identity{}, false, err
		}
		return Identity{Name: name, Path: path, Action: ActionCopyFromSibling, SiblingPath: sibling}, false, nil
	default:
		return Identity{Name: name, Path: path, Action: action}, false, nil
	}
}

// resolveRemoteCollision handles a name that is free locally but taken on
// the remote host.
func resolveRemoteCollision(req IdentityRequest, name, path string, p Prompter) (Identity, bool, error) {
	if req.NonInteractive {
		return Identity{Name: name, Path: path, Action: ActionCloneRemote}, false, nil
	}

	items := []tui.MenuItem{
		{Label: "Choose a different name"},
		{Label: "Clone the existing repository and work in it", Hint: name},
	}
	raw, err := p.Menu("A repository named "+name+" already exists on the host. What now?", items, 2)
	if err != nil {
		return Identity{}, false, err
	}

	action := pickAction(raw, []Action{"", ActionCloneRemote}, 2)
	if action == "" {
		return Identity{}, true, nil
	}
	return Identity{Name: name, Path: path, Action: ActionCloneRemote}, false, nil
}

// pickAction maps a raw menu answer onto the offered actions with the
// same forgiving rules as the selection menus, except the fallback is the
// menu default rather than the first entry: the first entry here means
// "start over", which should never be triggered by a typo.
func pickAction(raw string, actions []Action, def int) Action {
	ids := make([]string, len(actions))
	for i := range actions {
		ids[i] = strconv.Itoa(i + 1)
	}
	choice := parseMenuChoice(raw, ids, def, menuMatch{})
	if choice.id == ids[0] && strings.TrimSpace(raw) != "1" {
		return actions[def-1]
	}
	n, _ := strconv.Atoi(choice.id)
	return actions[n-1]
}

// pickSibling selects the source project for a copy-from-sibling action.
// A single candidate is selected silently, mirroring the single-option
// shortcut of the main menus.
func pickSibling(root string, siblings []string, p Prompter) (string, error) {
	if len(siblings) == 1 {
		return filepath.Join(root, siblings[0]), nil
	}

	items := make([]tui.MenuItem, len(siblings))
	for i, s := range siblings {
		items[i] = tui.MenuItem{Label: s}
	}
	raw, err := p.Menu("Copy the template system from which project?", items, 1)
	if err != nil {
		return "", err
	}
	choice := parseMenuChoice(raw, siblings, 1, menuMatch{
		match: func(input string) (string, bool) {
			for _, s := range siblings {
				if s == input {
					return s, true
				}
			}
			return "", false
		},
	})
	return filepath.Join(root, choice.id), nil
}

// FindSiblings scans root for project directories other than exclude that
// carry the marker subdirectory. Order follows os.ReadDir (sorted by
// name).
func FindSiblings(root, marker, exclude string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var siblings []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == exclude {
			continue
		}
		if dirExists(filepath.Join(root, entry.Name(), marker)) {
			siblings = append(siblings, entry.Name())
		}
	}
	return siblings
}

// ResolveAuthor resolves the author name through explicit > cached >
// interactive. The interactive default falls back to the authenticated
// host identity when no cached value exists.
func ResolveAuthor(ctx context.Context, req AuthorRequest, host Host, store PrefStore, p Prompter) (string, error) {
	if req.Explicit != "" {
		if err := store.Set(prefs.KeyAuthor, req.Explicit); err != nil {
			return "", err
		}
		return req.Explicit, nil
	}

	if cached, ok := store.Get(prefs.KeyAuthor); ok {
		return cached, nil
	}

	def := anonymousAuthor
	if host != nil {
		// Best effort: an unauthenticated or offline host just means no
		// suggested default.
		if user, err := host.CurrentUser(ctx); err == nil {
			switch {
			case user.Name != "":
				def = user.Name
			case user.Login != "":
				def = user.Login
			}
		}
	}

	author := def
	if !req.NonInteractive {
		answer, err := p.Line("Author name", def, def)
		if err != nil {
			return "", err
		}
		author = answer
	}
	if author == "" {
		author = anonymousAuthor
	}

	if err := store.Set(prefs.KeyAuthor, author); err != nil {
		return "", err
	}
	return author, nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
