package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/gitops"
	"github.com/imqueue/imq-cli/internal/platform"
	"github.com/imqueue/imq-cli/internal/scaffold"
	"github.com/imqueue/imq-cli/internal/templates"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/validate"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// TemplateResolver turns a template reference into a local directory.
type TemplateResolver interface {
	Resolve(ctx context.Context, ref string) (templates.ResolvedTemplate, error)
}

// RepositoryCreator creates the remote repository.
type RepositoryCreator interface {
	CreateRepository(ctx context.Context, url, description string, private bool) error
}

// Committer records and publishes the initial history.
type Committer interface {
	InitialCommit(ctx context.Context, dir string, c gitops.Commit) error
	Tag(ctx context.Context, dir, version string) error
}

// Installer installs the generated service's dependencies.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// NpmInstaller runs "npm install".
type NpmInstaller struct {
	Runner command.Runner
}

// Install implements Installer.
func (n NpmInstaller) Install(ctx context.Context, dir string) error {
	_, err := n.Runner.Run(ctx, dir, nil, "npm", "install")
	return err
}

// ProvisioningState records which stages took effect.
type ProvisioningState struct {
	Created            bool // destination populated from the template
	GitRepoInitialized bool // remote repository created
	Dockerized         bool
	Installed          bool
	Committed          bool
}

// ReportedError wraps an error that the pipeline already printed.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// Pipeline runs the create stages against injected collaborators.
type Pipeline struct {
	Templates TemplateResolver
	// GitHub returns a repository creator authenticated with token.
	GitHub    func(ctx context.Context, token string) RepositoryCreator
	CI        CIClient
	Nodes     NodeVersions
	Committer Committer
	Installer Installer
	Runner    command.Runner
	Prompter  ui.Prompter
	Console   *ui.Console
	Log       *zap.Logger
	Fs        afero.Fs
	Defaults  config.Defaults
	// Builder overrides the tag builder; nil builds one from Defaults
	// and Prompter.
	Builder *TagBuilder
}

// Create provisions the service described by req. On failure the error is
// printed, generated files are removed (unless the destination is the
// working directory) and a *ReportedError is returned.
func (p *Pipeline) Create(ctx context.Context, req Request) (*ProvisioningState, error) {
	state := &ProvisioningState{}

	dir, err := req.Destination()
	if err != nil {
		return state, p.fail(errors.Wrap(err, "resolving destination"), req, state, "", nil)
	}
	before, err := p.snapshot(dir)
	if err != nil {
		return state, p.fail(err, req, state, "", nil)
	}

	if err := p.run(ctx, req, dir, state); err != nil {
		return state, p.fail(err, req, state, dir, before)
	}

	p.Console.Success("Service %q created at %s", filepath.Base(dir), dir)
	return state, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, dir string, state *ProvisioningState) error {
	log := p.Log.With(zap.String("path", dir))

	if err := req.Validate(); err != nil {
		return errors.Wrap(err, "invalid request")
	}

	useGit := req.useGit(p.Defaults)
	var tools []string
	if useGit {
		tools = append(tools, "git")
	}
	if !req.SkipInstall {
		tools = append(tools, "npm")
	}
	if err := command.Require(p.Runner, tools...); err != nil {
		return errors.WithStack(err)
	}

	log.Debug("resolving template", zap.String("stage", "template"))
	tpl, err := p.Templates.Resolve(ctx, firstNonEmpty(req.Template, p.Defaults.Template))
	if err != nil {
		return errors.Wrap(err, "resolving template")
	}
	log.Debug("template resolved", zap.String("stage", "template"),
		zap.String("template", tpl.Path), zap.String("kind", string(tpl.Kind)))

	svc, err := p.builder().Build(req)
	if err != nil {
		return errors.Wrap(err, "building service tags")
	}

	p.Console.Info("Creating service %s from %s...", svc.Name, tpl.Path)
	if err := scaffold.Copy(p.Fs, tpl.Path, dir); err != nil {
		return errors.Wrap(err, "copying template")
	}
	state.Created = true

	if _, err := scaffold.Compile(p.Fs, dir, svc.Tags); err != nil {
		return errors.Wrap(err, "compiling template")
	}
	if err := scaffold.WriteLicense(p.Fs, dir, svc.License.Body); err != nil {
		return errors.Wrap(err, "writing license")
	}
	if _, err := scaffold.RenameServiceSource(p.Fs, dir, svc.ClassName); err != nil {
		return errors.Wrap(err, "renaming service source")
	}

	var token string
	if useGit {
		if token, err = p.githubToken(req); err != nil {
			return errors.Wrap(err, "resolving GitHub token")
		}
		if svc.RepoURL == "" {
			return errors.New("cannot create a repository without a GitHub namespace")
		}
		p.Console.Info("Creating GitHub repository %s/%s...", svc.Owner(), svc.Repo())
		repo := p.GitHub(ctx, token)
		if err := repo.CreateRepository(ctx, svc.RepoURL, svc.Description, req.private(p.Defaults)); err != nil {
			return errors.Wrap(err, "creating GitHub repository")
		}
		state.GitRepoInitialized = true
		log.Debug("repository created", zap.String("stage", "github"), zap.String("repo", svc.RepoURL))
	}

	ci := &ciProvisioner{
		fs:       p.Fs,
		ci:       p.CI,
		nodes:    p.Nodes,
		prompter: p.Prompter,
		console:  p.Console,
		log:      log,
		defaults: p.Defaults,
	}
	ciTags, err := ci.provision(ctx, req, svc, dir, token, state)
	if err != nil {
		return errors.Wrap(err, "configuring CI")
	}
	if _, err := scaffold.Compile(p.Fs, dir, svc.Tags.Merge(ciTags)); err != nil {
		return errors.Wrap(err, "compiling CI configuration")
	}

	if !req.SkipInstall {
		p.Console.Info("Installing dependencies...")
		if err := p.Installer.Install(ctx, dir); err != nil {
			return errors.Wrap(err, "installing dependencies")
		}
		state.Installed = true
	}

	if useGit {
		p.Console.Info("Committing and pushing initial version...")
		commit := gitops.Commit{
			Origin:  svc.RepoURL,
			Message: "Initial commit",
			Author:  svc.Author,
			Email:   svc.Email,
		}
		if err := p.Committer.InitialCommit(ctx, dir, commit); err != nil {
			return errors.Wrap(err, "committing service")
		}
		if err := p.Committer.Tag(ctx, dir, svc.Version); err != nil {
			return errors.Wrap(err, "tagging release")
		}
		state.Committed = true
	}
	return nil
}

func (p *Pipeline) builder() *TagBuilder {
	if p.Builder != nil {
		return p.Builder
	}
	return &TagBuilder{Defaults: p.Defaults, Prompter: p.Prompter}
}

// githubToken takes the token from the request or config, asking once when
// neither has one.
func (p *Pipeline) githubToken(req Request) (string, error) {
	if t := firstNonEmpty(req.GitHubToken, p.Defaults.GitHubAuthToken); t != "" {
		if !validate.IsGitHubToken(t) {
			return "", validate.Errorf("github token", "***", "expected 40 lowercase hex characters")
		}
		return t, nil
	}
	answer, err := p.Prompter.AskSecret("GitHub auth token:")
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("github token: %w", ui.ErrEmptyAnswer)
	}
	if !validate.IsGitHubToken(answer) {
		return "", validate.Errorf("github token", "***", "expected 40 lowercase hex characters")
	}
	return answer, nil
}

func (p *Pipeline) fail(err error, req Request, state *ProvisioningState, dir string, before map[string]bool) error {
	p.Log.Debug("pipeline failed", zap.Error(err))
	p.Console.PrintError(err, req.Stack)

	if state.GitRepoInitialized {
		p.Console.Warn("GitHub repository for this service was created and is left in place")
	}
	if dir != "" {
		p.rollback(dir, before)
	}
	return &ReportedError{Err: err}
}

// snapshot records the names present in dir before the run. A nil map means
// dir does not exist. A destination that is not a readable directory is
// refused, since nothing could be generated into it.
func (p *Pipeline) snapshot(dir string) (map[string]bool, error) {
	info, err := p.Fs.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "inspecting destination %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("destination %s exists and is not a directory", dir)
	}

	entries, err := afero.ReadDir(p.Fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading destination %s", dir)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

// rollback removes what the run generated. A destination created by the run
// is removed entirely; in a pre-existing one only new entries are removed.
// The working directory is never touched.
func (p *Pipeline) rollback(dir string, before map[string]bool) {
	if cwd, err := platform.IsWorkingDir(dir); err != nil || cwd {
		p.Console.Warn("Not removing %s: it is the current working directory", dir)
		return
	}

	if before == nil {
		if err := p.Fs.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			p.Console.Warn("Rollback failed: %v", err)
		}
		return
	}

	entries, err := afero.ReadDir(p.Fs, dir)
	if err != nil {
		p.Console.Warn("Not rolling back %s: %v", dir, err)
		return
	}
	for _, e := range entries {
		if before[e.Name()] {
			continue
		}
		if err := p.Fs.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			p.Console.Warn("Rollback failed: %v", err)
		}
	}
}
