package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/nodever"
	"github.com/imqueue/imq-cli/internal/scaffold"
	"github.com/imqueue/imq-cli/internal/travis"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/validate"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CIClient is the CI provider used to protect Docker credentials and turn on
// builds for the new repository.
type CIClient interface {
	Authenticate(ctx context.Context, githubToken string) error
	EncryptSecret(ctx context.Context, owner, repo, data string) (string, error)
	EnableBuilds(ctx context.Context, owner, repo string) (*travis.BuildsResult, error)
}

// NodeVersions resolves a Node.js version tag to a concrete release.
type NodeVersions interface {
	Resolve(ctx context.Context, tag string) (string, error)
}

// ciProvisioner configures CI and Docker files for a generated service.
type ciProvisioner struct {
	fs       afero.Fs
	ci       CIClient
	nodes    NodeVersions
	prompter ui.Prompter
	console  *ui.Console
	log      *zap.Logger
	defaults config.Defaults
}

// provision decides whether the service is dockerized, prepares the files
// accordingly and returns the CI tags. githubToken is only used when a
// repository was created.
func (c *ciProvisioner) provision(ctx context.Context, req Request, svc *Service, dir, githubToken string, state *ProvisioningState) (TagSet, error) {
	nodeTags := nodever.ParseTags(firstNonEmpty(req.NodeVersions, c.defaults.NodeVersions))
	tags := NewTagSet(TagTravisNodeTags, travisNodeList(nodever.TravisTags(nodeTags)))

	namespace := firstNonEmpty(req.DockerNamespace, c.defaults.DockerHubNamespace)
	if namespace != "" && !validate.IsNamespace(namespace) {
		return TagSet{}, validate.Errorf("docker namespace", namespace, "only letters, digits, dashes and underscores are allowed")
	}

	wanted := req.dockerize(c.defaults)
	if wanted && !state.GitRepoInitialized {
		c.console.Warn("Docker publishing needs a GitHub repository, skipping dockerization")
	}
	if wanted && state.GitRepoInitialized && namespace == "" {
		c.console.Warn("No Docker Hub namespace given, skipping dockerization")
	}

	if !(state.GitRepoInitialized && namespace != "" && wanted) {
		c.log.Debug("dockerization disabled", zap.String("stage", "ci"))
		if err := scaffold.StripDocker(c.fs, dir); err != nil {
			return TagSet{}, err
		}
		tags = tags.Merge(NewTagSet(
			TagNodeVersion, "",
			TagDockerNamespace, "",
			TagDockerImage, "",
			TagDockerUserSecret, "",
			TagDockerPassSecret, "",
		))
		if state.GitRepoInitialized {
			if err := c.enableBuilds(ctx, svc, githubToken); err != nil {
				return TagSet{}, err
			}
		}
		return tags, nil
	}

	state.Dockerized = true

	nodeVersion := strings.TrimSpace(req.DockerTag)
	if nodeVersion == "" {
		v, err := c.nodes.Resolve(ctx, nodeTags[0])
		if err != nil {
			return TagSet{}, fmt.Errorf("resolving node version %q: %w", nodeTags[0], err)
		}
		nodeVersion = v
	}
	c.log.Debug("node version resolved", zap.String("stage", "ci"), zap.String("version", nodeVersion))

	user, password, err := c.dockerCredentials()
	if err != nil {
		return TagSet{}, err
	}

	if err := c.ci.Authenticate(ctx, githubToken); err != nil {
		return TagSet{}, err
	}
	userSecret, err := c.ci.EncryptSecret(ctx, svc.Owner(), svc.Repo(), "DOCKER_USER="+user)
	if err != nil {
		return TagSet{}, err
	}
	passSecret, err := c.ci.EncryptSecret(ctx, svc.Owner(), svc.Repo(), "DOCKER_PASS="+password)
	if err != nil {
		return TagSet{}, err
	}

	tags = tags.Merge(NewTagSet(
		TagNodeVersion, nodeVersion,
		TagDockerNamespace, namespace,
		TagDockerImage, namespace+"/"+svc.Name,
		TagDockerUserSecret, userSecret,
		TagDockerPassSecret, passSecret,
	))

	if err := c.builds(ctx, svc); err != nil {
		return TagSet{}, err
	}
	return tags, nil
}

// dockerCredentials reads Docker Hub credentials from config, asking once
// for each missing value.
func (c *ciProvisioner) dockerCredentials() (user, password string, err error) {
	user = strings.TrimSpace(c.defaults.DockerHubUser)
	if user == "" {
		if user, err = c.prompter.AskText("Docker Hub user:", ""); err != nil {
			return "", "", err
		}
		if user = strings.TrimSpace(user); user == "" {
			return "", "", fmt.Errorf("docker hub user: %w", ui.ErrEmptyAnswer)
		}
	}

	password = c.defaults.DockerHubPassword
	if password == "" {
		if password, err = c.prompter.AskSecret("Docker Hub password:"); err != nil {
			return "", "", err
		}
		if password == "" {
			return "", "", fmt.Errorf("docker hub password: %w", ui.ErrEmptyAnswer)
		}
	}
	return user, password, nil
}

func (c *ciProvisioner) enableBuilds(ctx context.Context, svc *Service, githubToken string) error {
	if err := c.ci.Authenticate(ctx, githubToken); err != nil {
		return err
	}
	return c.builds(ctx, svc)
}

func (c *ciProvisioner) builds(ctx context.Context, svc *Service) error {
	res, err := c.ci.EnableBuilds(ctx, svc.Owner(), svc.Repo())
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		c.console.Warn("%s", w)
	}
	c.log.Debug("ci builds",
		zap.String("stage", "ci"),
		zap.String("repo", svc.Owner()+"/"+svc.Repo()),
		zap.Int("attempt", res.SyncAttempts),
		zap.Bool("synced", res.Synced),
		zap.Bool("hook", res.HookActivated))
	return nil
}

// travisNodeList renders node_js entries as YAML sequence items.
func travisNodeList(tags []string) string {
	lines := make([]string, len(tags))
	for i, t := range tags {
		lines[i] = fmt.Sprintf("- %q", t)
	}
	return strings.Join(lines, "\n")
}
