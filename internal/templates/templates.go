package templates

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/userdata"
	"github.com/spf13/afero"
)

// DefaultName is used when the reference is empty.
const DefaultName = "default"

// tmpSuffix is appended to the target dir during atomic clone.
const tmpSuffix = ".tmp"

// Kind tells where a resolved template came from.
type Kind string

const (
	KindLocal       Kind = "local"
	KindCachedNamed Kind = "cached-named"
	KindRemoteGit   Kind = "remote-git"
)

// ResolvedTemplate is a local directory holding a template.
type ResolvedTemplate struct {
	Path string
	Kind Kind
}

// NotFoundError reports a template name missing from the shared cache.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("template %q not found: no templates available", e.Name)
	}
	return fmt.Sprintf("template %q not found, available: %s", e.Name, strings.Join(e.Available, ", "))
}

var remotePattern = regexp.MustCompile(`^(git@|ssh://|git://|https?://)|\.git$`)

// IsRemote reports whether ref looks like a git repository URL.
func IsRemote(ref string) bool {
	return remotePattern.MatchString(ref)
}

// CacheName derives the custom cache directory name from a repository URL:
// the last path segment without its .git suffix.
func CacheName(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return strings.TrimSuffix(url, ".git")
}

// Resolver resolves template references against the two caches.
type Resolver struct {
	Home       string // shared cache, a clone of RepoURL
	CustomHome string // one directory per fetched repository URL
	RepoURL    string
	Fs         afero.Fs
	Runner     command.Runner
	Prompter   ui.Prompter
	Console    *ui.Console

	gitChecked bool
}

// NewResolver creates a Resolver using the default ~/.imq cache layout.
func NewResolver(runner command.Runner, prompter ui.Prompter, console *ui.Console) (*Resolver, error) {
	home, err := userdata.GetTemplatesRoot()
	if err != nil {
		return nil, err
	}
	custom, err := userdata.GetCustomTemplatesRoot()
	if err != nil {
		return nil, err
	}
	return &Resolver{
		Home:       home,
		CustomHome: custom,
		RepoURL:    RepoURL(),
		Fs:         afero.NewOsFs(),
		Runner:     runner,
		Prompter:   prompter,
		Console:    console,
	}, nil
}

// RepoURL returns the canonical templates repository, checking the
// IMQ_TEMPLATES_REPO_URL env var before branding.
func RepoURL() string {
	if v := os.Getenv(branding.EnvVar("TEMPLATES_REPO_URL")); v != "" {
		return v
	}
	return branding.TemplatesRepoURL()
}

// Resolve returns the local directory for ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (ResolvedTemplate, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = DefaultName
	}

	if r.isDir(ref) {
		abs, err := filepath.Abs(ref)
		if err != nil {
			abs = ref
		}
		return ResolvedTemplate{Path: abs, Kind: KindLocal}, nil
	}

	if IsRemote(ref) {
		p, err := r.fetchCustom(ctx, ref)
		if err != nil {
			return ResolvedTemplate{}, err
		}
		return ResolvedTemplate{Path: p, Kind: KindRemoteGit}, nil
	}

	available, err := r.List(ctx)
	if err != nil {
		return ResolvedTemplate{}, err
	}
	if p, ok := available[ref]; ok {
		return ResolvedTemplate{Path: p, Kind: KindCachedNamed}, nil
	}

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)
	return ResolvedTemplate{}, &NotFoundError{Name: ref, Available: names}
}

// List refreshes the shared cache (clone when absent, pull otherwise) and
// returns its templates keyed by name.
func (r *Resolver) List(ctx context.Context) (map[string]string, error) {
	if err := r.Update(ctx); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(r.Fs, r.Home)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	found := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		found[e.Name()] = filepath.Join(r.Home, e.Name())
	}
	return found, nil
}

// Update pulls the latest changes into the shared cache, cloning it first
// when it does not exist.
func (r *Resolver) Update(ctx context.Context) error {
	if err := r.ensureGit(); err != nil {
		return err
	}

	if !r.isDir(r.Home) {
		r.info("Loading IMQ templates, please, wait...")
		return r.clone(ctx, r.RepoURL, r.Home)
	}

	r.info("Updating IMQ templates, please, wait...")
	if _, err := r.Runner.Run(ctx, r.Home, nil, "git", "pull"); err != nil {
		return fmt.Errorf("pulling template updates: %w", err)
	}
	return nil
}

// fetchCustom clones url into the custom cache. An existing copy is reused
// unless the user asks to fetch it again.
func (r *Resolver) fetchCustom(ctx context.Context, url string) (string, error) {
	name := CacheName(url)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("cannot derive template name from %q", url)
	}
	target := filepath.Join(r.CustomHome, path.Clean(name))

	if r.exists(target) {
		overwrite, err := r.Prompter.AskConfirm(
			"Seems such template was already loaded, would you like to fetch it again and overwrite?", false)
		if err != nil {
			return "", err
		}
		if !overwrite {
			return target, nil
		}
		if err := r.Fs.RemoveAll(target); err != nil {
			return "", fmt.Errorf("removing cached template: %w", err)
		}
	}

	if err := r.ensureGit(); err != nil {
		return "", err
	}
	r.info("Loading template from repository %s, please, wait...", url)
	if err := r.clone(ctx, url, target); err != nil {
		return "", err
	}
	return target, nil
}

// clone writes to a .tmp directory first, then renames on success. On
// failure the .tmp directory is cleaned up.
func (r *Resolver) clone(ctx context.Context, url, target string) error {
	tmp := target + tmpSuffix
	_ = r.Fs.RemoveAll(tmp)

	if err := r.Fs.MkdirAll(filepath.Dir(tmp), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if _, err := r.Runner.Run(ctx, filepath.Dir(tmp), nil, "git", "clone", url, tmp); err != nil {
		_ = r.Fs.RemoveAll(tmp)
		return fmt.Errorf("cloning %s: %w", url, err)
	}

	if err := r.Fs.RemoveAll(target); err != nil {
		_ = r.Fs.RemoveAll(tmp)
		return fmt.Errorf("removing existing template dir: %w", err)
	}
	if err := r.Fs.Rename(tmp, target); err != nil {
		_ = r.Fs.RemoveAll(tmp)
		return fmt.Errorf("finalizing template clone: %w", err)
	}
	return nil
}

func (r *Resolver) ensureGit() error {
	if r.gitChecked {
		return nil
	}
	if err := r.Runner.LookPath("git"); err != nil {
		return err
	}
	r.gitChecked = true
	return nil
}

func (r *Resolver) isDir(p string) bool {
	info, err := r.Fs.Stat(p)
	return err == nil && info.IsDir()
}

func (r *Resolver) exists(p string) bool {
	ok, _ := afero.Exists(r.Fs, p)
	return ok
}

func (r *Resolver) info(format string, args ...any) {
	if r.Console != nil {
		r.Console.Info(format, args...)
	}
}
