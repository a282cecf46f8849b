// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookwright-cli/internal/prefs"
)

// CheckInterval is the minimum time between opportunistic update checks.
const CheckInterval = 24 * time.Hour

// maxJSONResponseBytes bounds release metadata reads (1 MB).
const maxJSONResponseBytes = 1 << 20

type (
	// Release is the published release the updater can move to.
	Release struct {
		// Version is the dotted-numeric version (leading "v" stripped).
		Version string
		// Assets are the downloadable artifacts.
		Assets []Asset
	}

	// Asset is one downloadable artifact in a release.
	Asset struct {
		Name        string `json:"name"`
		DownloadURL string `json:"browser_download_url"`
	}

	// releaseWire is the JSON wire format of the host's release endpoint.
	releaseWire struct {
		TagName string  `json:"tag_name"`
		Assets  []Asset `json:"assets"`
	}

	// Client fetches release metadata and artifacts for the tool itself.
	Client struct {
		httpClient *http.Client
		baseURL    string // overridable for tests
		owner      string
		repo       string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(u *Client) {
		u.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(u *Client) {
		u.baseURL = strings.TrimRight(base, "/")
	}
}

// WithRepo overrides the release repository owner and name.
func WithRepo(owner, repo string) ClientOption {
	return func(u *Client) {
		u.owner = owner
		u.repo = repo
	}
}

// NewClient creates a release client with sensible defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    "https://api.github.com",
		owner:      "bookwright",
		repo:       "bookwright",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the latest published release.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release metadata: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release endpoint returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading release metadata: %w", err)
	}

	var wire releaseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding release metadata: %w", err)
	}

	return &Release{
		Version: strings.TrimPrefix(wire.TagName, "v"),
		Assets:  wire.Assets,
	}, nil
}

// RemoteVersion returns the latest published version, or "" when the
// lookup fails for any reason. The check is best-effort and never fatal.
func (c *Client) RemoteVersion(ctx context.Context) string {
	release, err := c.LatestRelease(ctx)
	if err != nil {
		return ""
	}
	return release.Version
}

// ShouldCheck reports whether enough time has passed since the last
// recorded check, and records now as the latest attempt regardless of the
// answer's eventual outcome. Refreshing the timestamp on every attempt
// bounds check frequency even across repeated failures.
func ShouldCheck(store *prefs.Store, now time.Time) bool {
	last, ok := store.LastUpdateCheck()
	due := !ok || now.Sub(last) >= CheckInterval
	if due {
		_ = store.TouchUpdateCheck(now)
	}
	return due
}
