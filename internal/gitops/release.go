package gitops

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// ServicePackage is the npm dependency every IMQ service is built on.
const ServicePackage = "@imqueue/rpc"

// Release describes a version bump pushed to a service's branch.
type Release struct {
	Branch string // branch checked out and pulled before bumping
	Bump   string // npm version argument: major, minor, patch, prerelease or a version
}

// Defaults for Release fields left empty.
const (
	DefaultBranch = "master"
	DefaultBump   = "prerelease"
)

func (r Release) withDefaults() Release {
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	if r.Bump == "" {
		r.Bump = DefaultBump
	}
	return r
}

// BumpVersion checks out and pulls r.Branch in dir, bumps the package version
// with npm (which commits and tags) and pushes the branch with its tags.
func (g *Committer) BumpVersion(ctx context.Context, dir string, r Release) error {
	r = r.withDefaults()
	steps := []struct {
		name string
		args []string
	}{
		{"git", []string{"checkout", r.Branch}},
		{"git", []string{"pull"}},
		{"npm", []string{"version", r.Bump}},
		{"git", []string{"push", "--follow-tags"}},
	}
	for _, s := range steps {
		if _, err := g.Runner.Run(ctx, dir, nil, s.name, s.args...); err != nil {
			return fmt.Errorf("%s %s: %w", s.name, s.args[0], err)
		}
	}
	return nil
}

// ServiceDirs returns root itself when it holds an IMQ service, otherwise its
// immediate subdirectories that do, sorted by name.
func ServiceDirs(fs afero.Fs, root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	if IsService(fs, root) {
		return []string{root}, nil
	}

	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if IsService(fs, dir) {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IsService reports whether dir has a package.json depending on
// ServicePackage.
func IsService(fs afero.Fs, dir string) bool {
	data, err := afero.ReadFile(fs, filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var pkg struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	_, dep := pkg.Dependencies[ServicePackage]
	return dep
}
