package travis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Travis CI API endpoint.
	DefaultBaseURL = "https://api.travis-ci.com"
	// DefaultSyncRetries is how many times a failed sync is retried.
	DefaultSyncRetries = 3
	// DefaultSyncDelay is the wait between sync attempts.
	DefaultSyncDelay = 2 * time.Second

	acceptHeader = "application/vnd.travis-ci.2.1+json"
)

// StatusError is a non-successful Travis API response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("travis %s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the Travis CI API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	retries    uint64
	delay      time.Duration
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSyncRetry sets the sync retry budget and the delay between attempts.
func WithSyncRetry(retries uint64, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.delay = delay
	}
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates an unauthenticated Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		retries:    DefaultSyncRetries,
		delay:      DefaultSyncDelay,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate exchanges a GitHub token for a Travis access token.
func (c *Client) Authenticate(ctx context.Context, githubToken string) error {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth/github",
		map[string]string{"github_token": githubToken}, &resp); err != nil {
		return fmt.Errorf("authenticating with travis: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("authenticating with travis: empty access token")
	}
	c.token = resp.AccessToken
	return nil
}

// RepoKey returns the PEM encoded public key of owner/repo.
func (c *Client) RepoKey(ctx context.Context, owner, repo string) (string, error) {
	var resp struct {
		Key string `json:"key"`
	}
	if err := c.call(ctx, http.MethodGet, "/repos/"+owner+"/"+repo+"/key", nil, &resp); err != nil {
		return "", fmt.Errorf("fetching travis key for %s/%s: %w", owner, repo, err)
	}
	if resp.Key == "" {
		return "", fmt.Errorf("travis returned no key for %s/%s", owner, repo)
	}
	return resp.Key, nil
}

// Sync asks Travis to re-read the user's repositories from GitHub.
func (c *Client) Sync(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/users/sync", nil, nil)
}

// Hook is a repository's build hook.
type Hook struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	Active    bool   `json:"active"`
}

// Hooks lists the build hooks visible to the authenticated user.
func (c *Client) Hooks(ctx context.Context) ([]Hook, error) {
	var resp struct {
		Hooks []Hook `json:"hooks"`
	}
	if err := c.call(ctx, http.MethodGet, "/hooks", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing travis hooks: %w", err)
	}
	return resp.Hooks, nil
}

// ActivateHook switches builds on for a hook.
func (c *Client) ActivateHook(ctx context.Context, id int64) error {
	body := map[string]any{"hook": map[string]any{"id": id, "active": true}}
	if err := c.call(ctx, http.MethodPut, "/hooks/"+strconv.FormatInt(id, 10), body, nil); err != nil {
		return fmt.Errorf("activating travis hook %d: %w", id, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", "Travis/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing travis response: %w", err)
	}
	return nil
}
