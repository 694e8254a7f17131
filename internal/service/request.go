package service

import (
	"path/filepath"
	"strings"

	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/validate"
)

// Request is the user's intent for one run. Pointer flags are nil when the
// user did not set them, in which case stored config applies.
type Request struct {
	Name            string `validate:"required"`
	Path            string
	Template        string
	Author          string
	Email           string
	License         string
	Description     string
	Version         string `validate:"semver"`
	Homepage        string
	BugsURL         string
	NodeVersions    string
	UseGit          *bool
	GitHubNamespace string `validate:"namespace"`
	GitHubToken     string `validate:"ghtoken"`
	Private         *bool
	Dockerize       *bool
	DockerNamespace string `validate:"namespace"`
	DockerTag       string
	SkipInstall     bool
	// Stack prints stack traces with errors.
	Stack bool
}

// Validate checks the syntax of explicitly supplied values. Missing values
// are not errors here; they are filled from config or prompts later.
func (r Request) Validate() error {
	return validate.Request(r)
}

// Destination returns the absolute target directory ("." when unset).
func (r Request) Destination() (string, error) {
	p := strings.TrimSpace(r.Path)
	if p == "" {
		p = "."
	}
	return filepath.Abs(p)
}

// useGit reports whether a GitHub repository and git history are wanted.
func (r Request) useGit(d config.Defaults) bool {
	if r.UseGit != nil {
		return *r.UseGit
	}
	return d.UseGit
}

func (r Request) private(d config.Defaults) bool {
	if r.Private != nil {
		return *r.Private
	}
	return d.GitRepoPrivate
}

func (r Request) dockerize(d config.Defaults) bool {
	if r.Dockerize != nil {
		return *r.Dockerize
	}
	return d.UseDocker
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
