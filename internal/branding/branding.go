// Package branding provides compile-time identity values for the CLI.
//
// Values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	HomeDir          string `yaml:"home_dir"`
	EnvPrefix        string `yaml:"env_prefix"`
	GoModule         string `yaml:"go_module"`
	GitHubRepo       string `yaml:"github_repo"`
	TemplatesRepoURL string `yaml:"templates_repo_url"`
	GitHubHost       string `yaml:"github_host"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:          "imq",
			DisplayName:      "IMQ",
			Description:      "Command line interface for the IMQ microservice framework",
			HomeDir:          ".imq",
			EnvPrefix:        "IMQ",
			GoModule:         "github.com/imqueue/imq-cli",
			GitHubRepo:       "imqueue/imq-cli",
			TemplatesRepoURL: "git@github.com:imqueue/templates.git",
			GitHubHost:       "github.com",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "imq").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "IMQ").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".imq").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "IMQ").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the module path the binary is installed from.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string of the CLI itself.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// TemplatesRepoURL returns the git URL of the canonical service templates.
func TemplatesRepoURL() string { load(); return defaults.TemplatesRepoURL }

// GitHubHost returns the host used to derive service repository URLs.
func GitHubHost() string { load(); return defaults.GitHubHost }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "IMQ_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
