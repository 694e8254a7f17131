package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/github"
	"github.com/imqueue/imq-cli/internal/gitops"
	"github.com/imqueue/imq-cli/internal/logger"
	"github.com/imqueue/imq-cli/internal/nodever"
	"github.com/imqueue/imq-cli/internal/service"
	"github.com/imqueue/imq-cli/internal/templates"
	"github.com/imqueue/imq-cli/internal/travis"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/userdata"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func init() {
	addCreateFlags(serviceCreateCmd.Flags())
	serviceCmd.AddCommand(serviceCreateCmd)
	rootCmd.AddCommand(serviceCmd)
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Create and manage IMQ services",
}

var serviceCreateCmd = &cobra.Command{
	Use:   "create [name] [path]",
	Short: "Create a new service from a template",
	Long: `Create a new service from a template, optionally creating its GitHub
repository, enabling Travis CI builds and configuring Docker Hub publishing.

The name defaults to the current directory's name and the path to ".".
Values not given as flags are taken from the stored config, and asked for
when still missing.

Examples:
  ` + branding.CLIName() + ` service create user-accounts ./user-accounts
  ` + branding.CLIName() + ` service create billing ./billing -g -n acme -D -N acme
  ` + branding.CLIName() + ` service create --template git@github.com:acme/tpl.git`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd.Flags(), args)
		if err != nil {
			return err
		}

		store, err := openConfig()
		if err != nil {
			return err
		}
		defaults, err := store.Defaults()
		if err != nil {
			return err
		}

		console := ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
		log := logger.New(logger.Options{Verbose: verbose, File: logFilePath(defaults.LogFile)})
		defer func() { _ = log.Sync() }()

		p, err := newPipeline(defaults, console, log)
		if err != nil {
			return err
		}
		_, err = p.Create(cmd.Context(), req)
		return err
	},
}

// addCreateFlags registers the create flags on fs.
func addCreateFlags(fs *pflag.FlagSet) {
	fs.StringP("author", "a", "", "Author's full name")
	fs.StringP("email", "e", "", "Author's email")
	fs.BoolP("use-git", "g", false, "Create a GitHub repository and push the initial commit")
	fs.StringP("github-namespace", "n", "", "GitHub user or organization owning the repository")
	fs.StringP("license", "l", "", "License identifier or name (default UNLICENSED)")
	fs.StringP("template", "t", "", "Template name, local directory or git URL")
	fs.StringP("description", "d", "", "Service description")
	fs.StringP("node-versions", "V", "", "Comma separated Node.js version tags for CI (default latest,lts)")
	fs.BoolP("dockerize", "D", false, "Configure Docker Hub publishing from CI")
	fs.StringP("docker-namespace", "N", "", "Docker Hub namespace for the image")
	fs.String("docker-tag", "", "Node.js image version, skips resolving the first node version tag")
	fs.StringP("github-token", "T", "", "GitHub auth token")
	fs.BoolP("private", "p", false, "Create a private repository")
	fs.StringP("service-version", "v", "", "Initial service version (default "+service.DefaultVersion+")")
	fs.String("homepage", "", "Homepage URL (default: GitHub repository page)")
	fs.String("bugs-url", "", "Issue tracker URL (default: GitHub issues page)")
	fs.BoolP("skip-install", "s", false, "Do not run npm install")
	fs.Bool("stack", false, "Print stack traces with errors")
}

// requestFromFlags maps parsed flags and positional args onto a Request.
// Boolean flags stay nil unless given, so stored config can apply.
func requestFromFlags(fs *pflag.FlagSet, args []string) (service.Request, error) {
	var req service.Request
	str := func(name string) string {
		v, _ := fs.GetString(name)
		return v
	}
	optBool := func(name string) *bool {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetBool(name)
		return &v
	}

	if len(args) > 0 {
		req.Name = args[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return req, fmt.Errorf("getting current directory: %w", err)
		}
		req.Name = filepath.Base(cwd)
	}
	if len(args) > 1 {
		req.Path = args[1]
	}

	req.Author = str("author")
	req.Email = str("email")
	req.GitHubNamespace = str("github-namespace")
	req.License = str("license")
	req.Template = str("template")
	req.Description = str("description")
	req.NodeVersions = str("node-versions")
	req.DockerNamespace = str("docker-namespace")
	req.DockerTag = str("docker-tag")
	req.GitHubToken = str("github-token")
	req.Version = str("service-version")
	req.Homepage = str("homepage")
	req.BugsURL = str("bugs-url")
	req.UseGit = optBool("use-git")
	req.Dockerize = optBool("dockerize")
	req.Private = optBool("private")
	req.SkipInstall, _ = fs.GetBool("skip-install")
	req.Stack, _ = fs.GetBool("stack")
	return req, nil
}

// newPipeline wires the production collaborators.
func newPipeline(defaults config.Defaults, console *ui.Console, log *zap.Logger) (*service.Pipeline, error) {
	runner := command.Exec{}
	prompter := ui.NewTerminal()

	resolver, err := templates.NewResolver(runner, prompter, console)
	if err != nil {
		return nil, err
	}

	var nodeOpts []nodever.Option
	if dir, err := userdata.GetCacheDir(); err == nil {
		nodeOpts = append(nodeOpts, nodever.WithCacheDir(dir))
	}

	return &service.Pipeline{
		Templates: resolver,
		GitHub: func(ctx context.Context, token string) service.RepositoryCreator {
			return github.New(ctx, token)
		},
		CI:        travis.New(travis.WithLogger(log)),
		Nodes:     nodever.New(nodeOpts...),
		Committer: &gitops.Committer{Runner: runner},
		Installer: service.NpmInstaller{Runner: runner},
		Runner:    runner,
		Prompter:  prompter,
		Console:   console,
		Log:       log,
		Fs:        afero.NewOsFs(),
		Defaults:  defaults,
	}, nil
}

// logFilePath places a relative log file name under ~/.imq/logs.
func logFilePath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	dir, err := userdata.GetLogsDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}
