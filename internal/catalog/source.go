// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
)

// ErrSourceUnavailable is returned when the template source cannot be
// fetched. It is distinct from ErrCatalogEmpty, which means the fetch
// succeeded but yielded nothing usable.
var ErrSourceUnavailable = errors.New("template source unavailable")

// cloneSource is a seam for tests so Fetch can be exercised without a
// network. It matches the signature of git.PlainCloneContext.
var cloneSource = func(ctx context.Context, dir, url string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	return err
}

// Fetch clones the template source into a fresh temporary directory and
// returns the checkout path plus a cleanup function. The cleanup function
// must be deferred immediately: the checkout must be removed on every exit
// path, including fatal validation errors and user cancellation.
func Fetch(ctx context.Context, url string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "bookwright-catalog-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating catalog checkout directory: %w", err)
	}

	if err := cloneSource(ctx, dir, url); err != nil {
		// Partial checkout state is never left behind.
		_ = os.RemoveAll(dir)
		return "", nil, fmt.Errorf("%w: cloning %s: %v", ErrSourceUnavailable, url, err)
	}

	cleanup := func() { _ = os.RemoveAll(dir) }
	return dir, cleanup, nil
}
