package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/imqueue/imq-cli/internal/validate"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// ParseRepoURL extracts owner and repository name from a git URL such as
// git@github.com:owner/repo.git. Only the part after the last ':' is used.
func ParseRepoURL(url string) (owner, repo string, err error) {
	rest := url
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		rest = rest[i+1:]
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 2 {
		owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	}
	if owner == "" || repo == "" {
		return "", "", validate.Errorf("github url", url, "expected <host>:<owner>/<repo>")
	}
	return owner, repo, nil
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API endpoint (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the underlying transport client. The token is still
// applied on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client authenticated with token.
func New(ctx context.Context, token string, opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return c
}

type repository struct {
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

type account struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// CreateRepository creates the empty repository described by url. It fails
// with ErrRepositoryExists when the repository is already there.
func (c *Client) CreateRepository(ctx context.Context, url, description string, private bool) error {
	owner, repo, err := ParseRepoURL(url)
	if err != nil {
		return err
	}

	status, body, err := c.do(ctx, http.MethodGet, "/repos/"+owner+"/"+repo, nil)
	if err != nil {
		return fmt.Errorf("GitHub repository check failed: %w", err)
	}
	switch status {
	case http.StatusOK:
		return fmt.Errorf("%s/%s: %w", owner, repo, ErrRepositoryExists)
	case http.StatusNotFound:
	default:
		return fmt.Errorf("GitHub repository check failed: %w", parseAPIError(status, body))
	}

	path, err := c.createPath(ctx, owner)
	if err != nil {
		return err
	}

	req := createRequest{Name: repo, Description: description, Private: private}
	status, body, err = c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return fmt.Errorf("creating repository %s/%s: %w", owner, repo, err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("creating repository %s/%s: %w", owner, repo, parseAPIError(status, body))
	}

	var created repository
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("parsing created repository: %w", err)
	}
	if private && !created.Private {
		return fmt.Errorf("repository %s was created public: %w", created.FullName, ErrPrivateUnavailable)
	}
	return nil
}

// createPath picks the organisation endpoint when owner is an organisation,
// otherwise the authenticated user's endpoint, which requires the token to
// belong to owner.
func (c *Client) createPath(ctx context.Context, owner string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/orgs/"+owner, nil)
	if err != nil {
		return "", fmt.Errorf("looking up organisation %s: %w", owner, err)
	}
	if status == http.StatusOK {
		return "/orgs/" + owner + "/repos", nil
	}
	if status != http.StatusNotFound {
		return "", fmt.Errorf("looking up organisation %s: %w", owner, parseAPIError(status, body))
	}

	status, body, err = c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return "", fmt.Errorf("looking up token owner: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("looking up token owner: %w", parseAPIError(status, body))
	}
	var me account
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("parsing user: %w", err)
	}
	if !strings.EqualFold(me.Login, owner) {
		return "", fmt.Errorf("token belongs to %q and cannot create repositories for %q", me.Login, owner)
	}
	return "/user/repos", nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "imq-cli")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, data, nil
}
