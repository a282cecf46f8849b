// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// maxBinaryBytes is the upper bound on a downloaded binary (500 MB).
const maxBinaryBytes = 500 << 20

// ErrUpdatePayloadInvalid is returned when the downloaded update fails
// validation. A malformed payload must never overwrite the working copy;
// callers abort the update and continue with the current version.
var ErrUpdatePayloadInvalid = errors.New("update payload failed validation")

var (
	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

type (
	// Updater composes the release client and binary replacement into an
	// end-to-end update flow.
	Updater struct {
		client         *Client
		currentVersion string
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// WithClient overrides the default release client used by the Updater.
func WithClient(c *Client) UpdaterOption {
	return func(u *Updater) {
		u.client = c
	}
}

// NewUpdater creates an Updater for the given currentVersion.
func NewUpdater(currentVersion string, opts ...UpdaterOption) *Updater {
	u := &Updater{currentVersion: currentVersion}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = NewClient()
	}
	return u
}

// Available reports the newer remote version, if any. Best-effort: any
// lookup failure reads as "no update available".
func (u *Updater) Available(ctx context.Context) (string, bool) {
	remote := u.client.RemoteVersion(ctx)
	if remote == "" || !IsValid(remote) {
		return "", false
	}
	if !IsNewer(remote, u.currentVersion) {
		return "", false
	}
	return remote, true
}

// Apply downloads the latest release, validates it, backs up the current
// binary, and replaces it atomically (temp file plus rename in the target
// directory). On success the caller restarts via Restart so the user's
// original intent resumes under the new version.
func (u *Updater) Apply(ctx context.Context) (string, error) {
	release, err := u.client.LatestRelease(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching update: %w", err)
	}

	// A payload that does not carry a well-formed version must never
	// overwrite the working copy.
	if !IsValid(release.Version) {
		return "", fmt.Errorf("%w: release version %q is not a dotted-numeric version",
			ErrUpdatePayloadInvalid, release.Version)
	}

	asset, err := findBinaryAsset(release.Assets)
	if err != nil {
		return "", err
	}

	execPath, err := resolveExecPath()
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	targetDir := filepath.Dir(execPath)

	// Download into the target directory so the final rename is an
	// atomic same-filesystem move.
	tempPath, err := u.downloadToTempFile(ctx, asset.DownloadURL, targetDir)
	if err != nil {
		return "", fmt.Errorf("downloading update: %w", err)
	}

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tempPath)
		}
	}()

	info, err := os.Stat(tempPath)
	if err != nil {
		return "", fmt.Errorf("inspecting downloaded update: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: empty download", ErrUpdatePayloadInvalid)
	}

	// Keep a backup so a broken new binary can be restored manually.
	if err := copyFile(execPath, execPath+".bak"); err != nil {
		return "", fmt.Errorf("backing up current binary: %w", err)
	}

	orig, err := os.Stat(execPath)
	if err != nil {
		return "", fmt.Errorf("reading original binary permissions: %w", err)
	}
	if err := os.Chmod(tempPath, orig.Mode()); err != nil {
		return "", fmt.Errorf("setting binary permissions: %w", err)
	}

	if err := os.Rename(tempPath, execPath); err != nil {
		return "", fmt.Errorf("replacing binary: %w", err)
	}
	renamed = true

	return release.Version, nil
}

// StripUpdateFlag returns args without the given flag, so the re-invoked
// process resumes the user's original intent instead of updating again.
func StripUpdateFlag(args []string, flag string) []string {
	out := slices.Clone(args)
	return slices.DeleteFunc(out, func(a string) bool { return a == flag })
}

// binaryAssetName returns the expected release asset name for the current
// platform, e.g. "bookwright_linux_amd64".
func binaryAssetName() string {
	name := fmt.Sprintf("bookwright_%s_%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// findBinaryAsset scans the release assets for this platform's binary.
func findBinaryAsset(assets []Asset) (*Asset, error) {
	want := binaryAssetName()
	for i := range assets {
		if assets[i].Name == want {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no asset named %q in release", ErrUpdatePayloadInvalid, want)
}

// resolveExecPath returns the absolute, symlink-resolved path to the
// currently running binary.
func resolveExecPath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}
	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}
	return resolved, nil
}

// downloadToTempFile downloads url into a temporary file in dir and
// returns its path. The caller removes the file when done.
func (u *Updater) downloadToTempFile(ctx context.Context, url, dir string) (_ string, err error) {
	body, err := u.client.download(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only HTTP response body

	tmp, err := os.CreateTemp(dir, "bookwright-update-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, io.LimitReader(body, maxBinaryBytes)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing update to temp file: %w", err)
	}
	return tmp.Name(), nil
}

// download fetches an asset body.
func (c *Client) download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.StatusCode != 200 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download of %s returned %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// copyFile copies src to dst preserving src's mode.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }() // read-only handle

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
