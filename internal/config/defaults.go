package config

import "strings"

// Defaults are the stored answers the provisioning pipeline falls back to
// when a request leaves a field empty. It is read once per run and never
// written back.
type Defaults struct {
	Author             string `mapstructure:"author"`
	Email              string `mapstructure:"email"`
	License            string `mapstructure:"license"`
	Template           string `mapstructure:"template"`
	UseGit             bool   `mapstructure:"useGit"`
	GitBaseURL         string `mapstructure:"gitBaseUrl"`
	GitHubAuthToken    string `mapstructure:"gitHubAuthToken"`
	GitRepoPrivate     bool   `mapstructure:"gitRepoPrivate"`
	UseDocker          bool   `mapstructure:"useDocker"`
	DockerHubNamespace string `mapstructure:"dockerHubNamespace"`
	DockerHubUser      string `mapstructure:"dockerHubUser"`
	DockerHubPassword  string `mapstructure:"dockerHubPassword"`
	NodeVersions       string `mapstructure:"nodeVersions"`
	LogFile            string `mapstructure:"logFile"`
}

// GitHubNamespace extracts the namespace from GitBaseURL
// ("git@github.com:imqueue" → "imqueue").
func (d Defaults) GitHubNamespace() string {
	base := strings.TrimRight(strings.TrimSpace(d.GitBaseURL), "/")
	if i := strings.LastIndexAny(base, ":/"); i >= 0 {
		return base[i+1:]
	}
	return base
}
