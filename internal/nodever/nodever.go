package nodever

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	// DefaultIndexURL is the official Node.js release index.
	DefaultIndexURL = "https://nodejs.org/dist/index.json"
	// DefaultCacheMaxAge is how long a cached index is trusted.
	DefaultCacheMaxAge = 24 * time.Hour
)

// DefaultTags are used when no tags are requested.
var DefaultTags = []string{"latest", "lts"}

// LTS holds the index's lts field, which is false or a codename.
type LTS string

// UnmarshalJSON accepts both false and a codename string.
func (l *LTS) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*l = LTS(name)
		return nil
	}
	*l = ""
	return nil
}

// MarshalJSON writes false for non-LTS releases.
func (l LTS) MarshalJSON() ([]byte, error) {
	if l == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(l))
}

// Release is one entry of the index.
type Release struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
	LTS     LTS    `json:"lts"`
}

// IsLTS reports whether the release belongs to an LTS line.
func (r Release) IsLTS() bool {
	return r.LTS != ""
}

// Client fetches and queries the release index.
type Client struct {
	indexURL   string
	httpClient *http.Client
	cacheDir   string
	maxAge     time.Duration

	mu       sync.Mutex
	versions []Release
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithIndexURL overrides the release index location.
func WithIndexURL(url string) Option {
	return func(cl *Client) {
		cl.indexURL = url
	}
}

// WithCacheDir enables the on-disk index cache in dir.
func WithCacheDir(dir string) Option {
	return func(cl *Client) {
		cl.cacheDir = dir
	}
}

// WithMaxAge sets how long the disk cache is considered fresh.
func WithMaxAge(d time.Duration) Option {
	return func(cl *Client) {
		cl.maxAge = d
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		indexURL:   DefaultIndexURL,
		httpClient: http.DefaultClient,
		maxAge:     DefaultCacheMaxAge,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Versions returns every known release, newest first.
func (c *Client) Versions(ctx context.Context) ([]Release, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions != nil {
		return c.versions, nil
	}

	cached, _ := c.loadCache()
	if cached != nil && !cached.stale(c.maxAge) {
		c.versions = cached.Versions
		return c.versions, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		if cached != nil && len(cached.Versions) > 0 {
			c.versions = cached.Versions
			return c.versions, nil
		}
		return nil, err
	}

	Sort(fetched)
	c.versions = fetched
	_ = c.saveCache(fetched)
	return c.versions, nil
}

func (c *Client) fetch(ctx context.Context) ([]Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching node versions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node version index returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("parsing node version index: %w", err)
	}
	return releases, nil
}

// Sort orders releases newest first by semantic version. Equal versions keep
// their relative order; unparseable versions sort last.
func Sort(releases []Release) {
	parsed := make([]*semver.Version, len(releases))
	for i, r := range releases {
		parsed[i], _ = semver.NewVersion(strings.TrimPrefix(r.Version, "v"))
	}

	idx := make([]int, len(releases))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := parsed[idx[a]], parsed[idx[b]]
		switch {
		case va == nil:
			return false
		case vb == nil:
			return true
		}
		return va.GreaterThan(vb)
	})

	sorted := make([]Release, len(releases))
	for i, j := range idx {
		sorted[i] = releases[j]
	}
	copy(releases, sorted)
}

// Resolve returns the concrete version (without the leading "v") for tag.
func (c *Client) Resolve(ctx context.Context, tag string) (string, error) {
	versions, err := c.Versions(ctx)
	if err != nil {
		return "", err
	}
	return Match(versions, tag)
}

// Match picks the release for tag from releases sorted newest first:
// latest/node is the newest release, stable/lts/lts/* the newest LTS
// release, anything else the newest release whose version starts with
// "v"+tag.
func Match(releases []Release, tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))

	var match func(Release) bool
	switch tag {
	case "latest", "node":
		match = func(Release) bool { return true }
	case "stable", "lts", "lts/*":
		match = Release.IsLTS
	default:
		prefix := "v" + strings.TrimPrefix(tag, "v")
		match = func(r Release) bool { return strings.HasPrefix(r.Version, prefix) }
	}

	for _, r := range releases {
		if match(r) {
			return strings.TrimPrefix(r.Version, "v"), nil
		}
	}
	return "", fmt.Errorf("no Node.js release matches %q", tag)
}

// ParseTags splits a comma or whitespace separated tag list. An empty list
// yields DefaultTags.
func ParseTags(s string) []string {
	tags := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(tags) == 0 {
		return append([]string(nil), DefaultTags...)
	}
	return tags
}

// TravisTags converts tags to Travis CI node_js values: latest and node
// become "node", stable and lts become "lts/*". Duplicates are dropped.
func TravisTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		switch strings.ToLower(t) {
		case "":
			continue
		case "latest", "node":
			t = "node"
		case "stable", "lts", "lts/*":
			t = "lts/*"
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
