// Package gitops performs the initial git history of a generated service
// (init, commit, push and the first version tag) and later version bumps of
// existing services.
package gitops

import (
	"context"
	"fmt"
	"strings"

	"github.com/imqueue/imq-cli/internal/command"
)

// Commit describes the initial commit.
type Commit struct {
	Origin  string // remote URL added as origin
	Message string
	Author  string
	Email   string
}

// Committer runs git through Runner.
type Committer struct {
	Runner command.Runner
}

// TagName returns the git tag used for version.
func TagName(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}

// InitialCommit initializes dir as a repository, commits everything and
// pushes the branch to c.Origin.
func (g *Committer) InitialCommit(ctx context.Context, dir string, c Commit) error {
	if err := g.Runner.LookPath("git"); err != nil {
		return err
	}

	env := identity(c.Author, c.Email)
	steps := [][]string{
		{"init"},
		{"add", "."},
		{"commit", "-m", c.Message},
		{"remote", "add", "origin", c.Origin},
		{"push", "-u", "origin", "HEAD"},
	}
	for _, args := range steps {
		if _, err := g.Runner.Run(ctx, dir, env, "git", args...); err != nil {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
	}
	return nil
}

// Tag (re)creates the version tag locally and on origin. A tag of the same
// name is deleted first; failures of those deletions are ignored since the
// tag usually does not exist.
func (g *Committer) Tag(ctx context.Context, dir, version string) error {
	tag := TagName(version)

	_, _ = g.Runner.Run(ctx, dir, nil, "git", "tag", "-d", tag)
	_, _ = g.Runner.Run(ctx, dir, nil, "git", "push", "origin", ":refs/tags/"+tag)

	if _, err := g.Runner.Run(ctx, dir, nil, "git", "tag", tag); err != nil {
		return fmt.Errorf("git tag %s: %w", tag, err)
	}
	if _, err := g.Runner.Run(ctx, dir, nil, "git", "push", "origin", tag); err != nil {
		return fmt.Errorf("git push %s: %w", tag, err)
	}
	return nil
}

func identity(name, email string) []string {
	var env []string
	if name != "" {
		env = append(env, "GIT_AUTHOR_NAME="+name, "GIT_COMMITTER_NAME="+name)
	}
	if email != "" {
		env = append(env, "GIT_AUTHOR_EMAIL="+email, "GIT_COMMITTER_EMAIL="+email)
	}
	return env
}
