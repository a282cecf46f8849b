// SPDX-License-Identifier: MPL-2.0

package githost

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrNothingToCommit is returned by InitAndCommit when the worktree is
// clean. Callers downgrade it to a warning: an empty commit after
// materialization does not indicate corrupted state.
var ErrNothingToCommit = errors.New("nothing to commit")

// Clone performs a shallow clone of url into dir.
func Clone(ctx context.Context, url, dir, token string) error {
	opts := &git.CloneOptions{
		URL:   url,
		Depth: 1,
	}
	if token != "" {
		opts.Auth = tokenAuth(token)
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// InitAndCommit initializes a repository in dir (if one does not already
// exist), stages everything, and records an initial commit attributed to
// authorName.
func InitAndCommit(dir, message, authorName string) error {
	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(dir)
	}
	if err != nil {
		return fmt.Errorf("initializing repository in %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging files: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("reading worktree status: %w", err)
	}
	if status.IsClean() {
		return ErrNothingToCommit
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name: authorName,
			When: time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// AddRemoteAndPush points origin at remoteURL and pushes the current
// history.
func AddRemoteAndPush(ctx context.Context, dir, remoteURL, token string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("opening repository in %s: %w", dir, err)
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteURL},
	})
	if err != nil && !errors.Is(err, git.ErrRemoteExists) {
		return fmt.Errorf("adding remote: %w", err)
	}

	pushOpts := &git.PushOptions{RemoteName: "origin"}
	if token != "" {
		pushOpts.Auth = tokenAuth(token)
	}
	if err := repo.PushContext(ctx, pushOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing to %s: %w", remoteURL, err)
	}
	return nil
}

// tokenAuth builds HTTP basic auth from an access token, the form the
// host expects for token-authenticated git transport.
func tokenAuth(token string) *githttp.BasicAuth {
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}
