// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"

	"bookwright-cli/internal/catalog"
	"bookwright-cli/internal/config"
	"bookwright-cli/internal/githost"
	"bookwright-cli/internal/issue"
	"bookwright-cli/internal/prefs"
	"bookwright-cli/internal/resolve"
	"bookwright-cli/internal/selfupdate"
	"bookwright-cli/internal/tui"
)

// Seams for tests: network-touching operations behind package-level
// function vars.
var (
	fetchCatalog     = catalog.Fetch
	cloneRepo        = githost.Clone
	initAndCommit    = githost.InitAndCommit
	addRemoteAndPush = githost.AddRemoteAndPush

	renderMarkdown = func(in string) (string, error) {
		return glamour.Render(in, "auto")
	}
)

type (
	// Host is the repository-host surface the executor consumes. The
	// executor only sees structured results or failures; provider error
	// codes never leak past the githost package.
	Host interface {
		AuthStatus(ctx context.Context) error
		CurrentUser(ctx context.Context) (githost.User, error)
		RepoExists(ctx context.Context, name string) (bool, error)
		ListRepos(ctx context.Context) ([]githost.Repo, error)
		CreateRepo(ctx context.Context, name, description string, private bool) (githost.Repo, error)
		Token() string
	}

	// Executor runs the wizard end to end.
	Executor struct {
		cfg      *config.Config
		store    *prefs.Store
		host     Host
		prompter resolve.Prompter
		releases *selfupdate.Client
		out      io.Writer
		logger   *log.Logger
		now      func() time.Time
		version  string
	}

	// Option configures an Executor during construction.
	Option func(*Executor)

	// RunOptions are the per-invocation flag values.
	RunOptions struct {
		// Project is the --project flag value.
		Project string
		// Author is the --author flag value.
		Author string
		// Module is the --module flag value.
		Module string
		// Language is the --language flag value.
		Language string
		// Yes enables non-interactive auto-confirm mode.
		Yes bool
		// NoUpdateCheck suppresses the opportunistic update check.
		NoUpdateCheck bool
	}
)

// WithOutput sets the writer for user-facing output.
func WithOutput(w io.Writer) Option {
	return func(e *Executor) {
		e.out = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// WithReleases enables the opportunistic update notification.
func WithReleases(c *selfupdate.Client) Option {
	return func(e *Executor) {
		e.releases = c
	}
}

// WithVersion sets the running tool version used for update comparisons.
func WithVersion(v string) Option {
	return func(e *Executor) {
		e.version = v
	}
}

// New creates an Executor.
func New(cfg *config.Config, store *prefs.Store, host Host, p resolve.Prompter, opts ...Option) *Executor {
	e := &Executor{
		cfg:      cfg,
		store:    store,
		host:     host,
		prompter: p,
		out:      os.Stdout,
		logger:   log.New(io.Discard),
		now:      time.Now,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one wizard invocation. Validation and fetch failures
// before materialization are fatal; failures after materialization has
// begun are downgraded to warnings since they do not indicate corrupted
// state.
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if !opts.NoUpdateCheck {
		e.maybeNotifyUpdate(ctx)
	}

	if err := e.host.AuthStatus(ctx); err != nil {
		return issue.WrapWithOperation(err, "checking repository host access").
			WithSuggestion("Export an access token: `export " + e.cfg.Host.TokenEnv + "=<token>`").
			WithSuggestion("Create a token at https://github.com/settings/tokens with the `repo` scope")
	}

	root, cleanup, err := fetchCatalog(ctx, e.cfg.Source.CloneURL())
	if err != nil {
		return issue.WrapWithOperation(err, "fetching the template catalog").
			WithResource(e.cfg.Source.CloneURL()).
			WithSuggestion("Check your network connection").
			WithSuggestion("Verify the template source in `bookwright config show`")
	}
	defer cleanup()
	e.logger.Debug("fetched template catalog", "dir", root)

	snap, err := catalog.Build(root)
	if err != nil {
		return issue.WrapWithOperation(err, "reading the template catalog").
			WithResource(e.cfg.Source.CloneURL())
	}
	e.logger.Debug("built catalog", "modules", len(snap.Modules))

	moduleResult, err := resolve.ResolveModule(resolve.ModuleRequest{
		Explicit:       opts.Module,
		NonInteractive: opts.Yes,
		CustomTriggers: e.cfg.CustomTriggers,
	}, snap, e.store, e.prompter)
	if err != nil {
		return err
	}

	if moduleResult.Custom {
		return e.runCustom(ctx, opts)
	}

	module, _ := snap.Module(moduleResult.Selection.ID)
	e.announceSelection(moduleResult.Selection, module.Name)

	langSel, err := resolve.ResolveLanguage(resolve.LanguageRequest{
		Explicit:       opts.Language,
		NonInteractive: opts.Yes,
	}, module, e.store, e.prompter)
	if err != nil {
		return err
	}
	language, _ := module.Language(langSel.ID)
	e.announceSelection(langSel, language.Name)

	identity, err := resolve.ResolveIdentity(ctx, resolve.IdentityRequest{
		Explicit:       opts.Project,
		NonInteractive: opts.Yes,
		ProjectsRoot:   e.cfg.ProjectsRoot,
		Fallback:       e.cfg.FallbackProjectName,
		MarkerDir:      SystemDirName,
		RefreshActions: true,
	}, e.host, e.prompter)
	if err != nil {
		return err
	}

	author, err := resolve.ResolveAuthor(ctx, resolve.AuthorRequest{
		Explicit:       opts.Author,
		NonInteractive: opts.Yes,
	}, e.host, e.store, e.prompter)
	if err != nil {
		return err
	}

	if !opts.Yes {
		ok, err := e.prompter.Confirm(
			fmt.Sprintf("Create %s (%s, %s) in %s?", identity.Name, module.Name, language.Name, identity.Path),
			true,
		)
		if err != nil {
			return err
		}
		if !ok {
			return errCancelledRun
		}
	}

	langDir := languageDir(snap.Root, module.ID, language.ID)
	return e.materialize(ctx, identity, language, langDir, author)
}

// errCancelledRun marks a declined confirmation. The command layer maps
// it to exit code 0: backing out at a confirmation point is a normal
// outcome.
var errCancelledRun = errors.New("cancelled at confirmation")

// Cancelled reports whether err represents a user backing out of the run.
func Cancelled(err error) bool {
	return errors.Is(err, errCancelledRun)
}

// materialize dispatches the resolved identity's action.
func (e *Executor) materialize(ctx context.Context, identity resolve.Identity, language catalog.Language, langDir, author string) error {
	e.logger.Debug("materializing", "action", identity.Action, "path", identity.Path)

	switch identity.Action {
	case resolve.ActionReuseExisting:
		fmt.Fprintf(e.out, "Using the existing project at %s\n", identity.Path)
		return nil

	case resolve.ActionUpdateInPlace:
		if err := refreshSystem(langDir, identity.Path, language, author, identity.Name, e.now()); err != nil {
			return issue.WrapWithOperation(err, "refreshing the template system").
				WithResource(identity.Path)
		}
		fmt.Fprintf(e.out, "Refreshed the template system in %s\n", identity.Path)
		return nil

	case resolve.ActionCopyFromSibling:
		if err := copySystemFromSibling(identity.SiblingPath, identity.Path); err != nil {
			return issue.WrapWithOperation(err, "copying the template system").
				WithResource(identity.SiblingPath)
		}
		fmt.Fprintf(e.out, "Copied the template system from %s\n", identity.SiblingPath)
		return nil

	case resolve.ActionCloneRemote:
		return e.cloneOwnRepo(ctx, identity)

	default: // create-fresh
		if err := materializeFresh(langDir, identity.Path, language, author, identity.Name, e.now()); err != nil {
			return issue.WrapWithOperation(err, "creating the project").
				WithResource(identity.Path)
		}
		e.publish(ctx, identity, author)
		e.printNextSteps(identity, language)
		return nil
	}
}

// cloneOwnRepo clones the user's existing remote repository of the same
// name as the working copy.
func (e *Executor) cloneOwnRepo(ctx context.Context, identity resolve.Identity) error {
	user, err := e.host.CurrentUser(ctx)
	if err != nil {
		return issue.WrapWithOperation(err, "looking up the host account")
	}

	url := fmt.Sprintf("https://github.com/%s/%s.git", user.Login, identity.Name)
	if err := cloneRepo(ctx, url, identity.Path, e.host.Token()); err != nil {
		return issue.WrapWithOperation(err, "cloning the existing repository").
			WithResource(url)
	}
	fmt.Fprintf(e.out, "Cloned %s into %s\n", identity.Name, identity.Path)
	return nil
}

// publish records the initial commit and pushes it to a newly created
// remote repository. Everything here runs after materialization, so
// failures are warnings, not fatal errors: the project on disk is intact.
func (e *Executor) publish(ctx context.Context, identity resolve.Identity, author string) {
	if err := initAndCommit(identity.Path, "Initial project structure", author); err != nil {
		if errors.Is(err, githost.ErrNothingToCommit) {
			e.logger.Debug("worktree clean, skipping initial commit")
			return
		}
		e.warn("recording the initial commit failed", err)
		return
	}

	repo, err := e.host.CreateRepo(ctx, identity.Name, "Created with bookwright", true)
	if err != nil {
		e.warn("creating the remote repository failed", err)
		return
	}

	if err := addRemoteAndPush(ctx, identity.Path, repo.CloneURL, e.host.Token()); err != nil {
		e.warn("pushing to the remote repository failed", err)
		return
	}
	e.logger.Debug("pushed initial commit", "remote", repo.CloneURL)
}

// runCustom handles the custom-module path: one of the user's own
// repositories serves as the template, and language resolution is skipped
// because the template carries its own language.
func (e *Executor) runCustom(ctx context.Context, opts RunOptions) error {
	repos, err := e.host.ListRepos(ctx)
	if err != nil {
		return issue.WrapWithOperation(err, "listing your repositories")
	}
	if len(repos) == 0 {
		return issue.NewActionableError("finding a template repository").
			WithSuggestion("Push a repository to use as a template, or pick a built-in module")
	}

	repo, err := e.pickRepo(repos)
	if err != nil {
		return err
	}

	// RefreshActions stays off: a custom template carries its own layout,
	// so a colliding project can only be reused, renamed, or cloned.
	identity, err := resolve.ResolveIdentity(ctx, resolve.IdentityRequest{
		Explicit:       opts.Project,
		NonInteractive: opts.Yes,
		ProjectsRoot:   e.cfg.ProjectsRoot,
		Fallback:       repo.Name,
		MarkerDir:      SystemDirName,
	}, e.host, e.prompter)
	if err != nil {
		return err
	}

	switch identity.Action {
	case resolve.ActionReuseExisting:
		fmt.Fprintf(e.out, "Using the existing project at %s\n", identity.Path)
		return nil
	case resolve.ActionCloneRemote:
		return e.cloneOwnRepo(ctx, identity)
	default:
		// The template repository is cloned as the working copy; its
		// history becomes the project's history.
		if err := cloneRepo(ctx, repo.CloneURL, identity.Path, e.host.Token()); err != nil {
			return issue.WrapWithOperation(err, "cloning the template repository").
				WithResource(repo.CloneURL)
		}
		fmt.Fprintf(e.out, "Created %s from %s\n", identity.Path, repo.Name)
		return nil
	}
}

// pickRepo selects one of the user's repositories as the custom template.
// The menu answer follows the usual forgiving rules: index, exact name,
// or fallback to the first entry.
func (e *Executor) pickRepo(repos []githost.Repo) (githost.Repo, error) {
	if len(repos) == 1 {
		return repos[0], nil
	}

	items := make([]tui.MenuItem, len(repos))
	for i, r := range repos {
		items[i] = tui.MenuItem{Label: r.Name, Hint: r.Description}
	}
	raw, err := e.prompter.Menu("Which repository should be the template?", items, 1)
	if err != nil {
		return githost.Repo{}, err
	}

	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(repos) {
		return repos[n-1], nil
	}
	for _, r := range repos {
		if r.Name == raw {
			return r, nil
		}
	}
	return repos[0], nil
}

// warn reports a post-materialization failure without failing the run.
func (e *Executor) warn(msg string, err error) {
	e.logger.Warn(msg, "err", err)
	fmt.Fprintf(e.out, "Warning: %s: %v\n", msg, err)
}

// maybeNotifyUpdate runs the throttled best-effort update check and
// prints a one-line hint when a newer version is published. Failures are
// silent; this must never delay or break the wizard.
func (e *Executor) maybeNotifyUpdate(ctx context.Context) {
	if e.releases == nil {
		return
	}
	if !selfupdate.ShouldCheck(e.store, e.now()) {
		return
	}

	remote := e.releases.RemoteVersion(ctx)
	if remote == "" {
		e.logger.Debug("update check failed, continuing")
		return
	}
	if selfupdate.IsNewer(remote, e.version) {
		fmt.Fprintf(e.out, "A newer version (%s) is available. Run `bookwright upgrade` to install it.\n", remote)
	}
}

// announceSelection tells the user what was chosen and why, when the
// choice did not come from an interactive prompt they just answered.
func (e *Executor) announceSelection(sel resolve.Selection, name string) {
	switch sel.Provenance {
	case resolve.ProvenanceDefault:
		fmt.Fprintf(e.out, "Using the only available %s: %s\n", sel.Kind, name)
	case resolve.ProvenanceCached:
		fmt.Fprintf(e.out, "Using your last %s: %s\n", sel.Kind, name)
	}
}

// printNextSteps renders the post-creation card with the language's
// example workflows.
func (e *Executor) printNextSteps(identity resolve.Identity, language catalog.Language) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\nCreated in `%s`.\n", identity.Name, identity.Path)

	if len(language.Workflows) > 0 {
		md.WriteString("\n## Example workflows\n\n")
		for _, w := range language.Workflows {
			if w.Description != "" {
				fmt.Fprintf(&md, "- `%s` — %s\n", w.Command, w.Description)
			} else {
				fmt.Fprintf(&md, "- `%s`\n", w.Command)
			}
		}
	}

	rendered, err := renderMarkdown(md.String())
	if err != nil {
		// Raw markdown is still readable.
		rendered = md.String()
	}
	fmt.Fprint(e.out, rendered)
}
