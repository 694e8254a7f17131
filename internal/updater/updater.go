package updater

import (
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBase is the GitHub REST endpoint releases are read from.
const DefaultAPIBase = "https://api.github.com"

// Release is the subset of a GitHub release the banner needs.
type Release struct {
	Version   string    `json:"tag_name"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Updater checks for new releases of the running binary.
type Updater struct {
	currentVersion string
	httpClient     *http.Client
	apiBase        string
	repo           string
}

// Option configures an Updater.
type Option func(*Updater)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(u *Updater) {
		u.httpClient = c
	}
}

// WithAPIBase points the updater at another GitHub API endpoint.
func WithAPIBase(base string) Option {
	return func(u *Updater) {
		u.apiBase = strings.TrimRight(base, "/")
	}
}

// WithRepo overrides the owner/name of the release repository.
func WithRepo(repo string) Option {
	return func(u *Updater) {
		u.repo = repo
	}
}

// New creates an Updater with the given current version and options.
func New(currentVersion string, opts ...Option) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		apiBase:        DefaultAPIBase,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}
