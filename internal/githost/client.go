// SPDX-License-Identifier: MPL-2.0

package githost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// defaultPerPage is the number of repositories fetched per API page.
	defaultPerPage = 100

	// maxPages is the upper bound on pagination to avoid runaway requests.
	maxPages = 3

	// maxJSONResponseBytes is the upper bound on JSON API response size
	// (10 MB). Prevents unbounded memory consumption from malformed
	// responses.
	maxJSONResponseBytes = 10 << 20
)

// ErrUnauthenticated is returned when the host rejects the credentials
// (or none were provided).
var ErrUnauthenticated = errors.New("not authenticated with the repository host")

type (
	// User identifies the authenticated account.
	User struct {
		Login string `json:"login"`
		Name  string `json:"name"`
	}

	// Repo is a repository summary as consumed by the wizard.
	Repo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CloneURL    string `json:"clone_url"`
	}

	// Client queries the repository host's REST API.
	Client struct {
		httpClient *http.Client
		baseURL    string // API base URL (default: "https://api.github.com", overridable for tests)
		token      string // access token; empty means unauthenticated
		userAgent  string // User-Agent header value
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	// createRepoRequest is the JSON wire format for repository creation.
	createRepoRequest struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Private     bool   `json:"private"`
	}
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets an access token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(g *Client) {
		g.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) {
		g.userAgent = ua
	}
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    "https://api.github.com",
		userAgent:  "bookwright/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the authenticated account. Returns
// ErrUnauthenticated when the host rejects the credentials.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	err := c.getJSON(ctx, "/user", &user)
	return user, err
}

// AuthStatus reports whether the client is usable for authenticated
// operations. A nil error means authenticated.
func (c *Client) AuthStatus(ctx context.Context) error {
	if c.token == "" {
		return ErrUnauthenticated
	}
	_, err := c.CurrentUser(ctx)
	return err
}

// RepoExists checks whether the authenticated user owns a repository with
// the given name.
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return false, err
	}

	var repo Repo
	err = c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", user.Login, name), &repo)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRepos returns the authenticated user's repositories (name and
// description), following pagination up to maxPages.
func (c *Client) ListRepos(ctx context.Context) ([]Repo, error) {
	var all []Repo
	for page := 1; page <= maxPages; page++ {
		var repos []Repo
		path := fmt.Sprintf("/user/repos?per_page=%d&page=%d&affiliation=owner", defaultPerPage, page)
		if err := c.getJSON(ctx, path, &repos); err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if len(repos) < defaultPerPage {
			break
		}
	}
	return all, nil
}

// CreateRepo creates a repository for the authenticated user and returns
// its summary, including the clone URL to push to.
func (c *Client) CreateRepo(ctx context.Context, name, description string, private bool) (Repo, error) {
	body, err := json.Marshal(createRepoRequest{
		Name:        name,
		Description: description,
		Private:     private,
	})
	if err != nil {
		return Repo{}, fmt.Errorf("encoding create request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/user/repos", bytes.NewReader(body))
	if err != nil {
		return Repo{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var repo Repo
	if err := c.do(req, &repo); err != nil {
		return Repo{}, err
	}
	return repo, nil
}

// Token exposes the configured token for git transport authentication.
func (c *Client) Token() string {
	return c.token
}

// statusError carries a non-success HTTP status for callers that branch on
// specific codes (404 for existence checks). Everything else treats it as
// an opaque failure.
type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("host returned %d for %s", e.code, e.path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling host API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (%s)", ErrUnauthenticated, req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &statusError{code: resp.StatusCode, path: req.URL.Path}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return fmt.Errorf("reading host response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding host response for %s: %w", req.URL.Path, err)
	}
	return nil
}
