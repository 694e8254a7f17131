package config

// Config keys as they appear in config.json.
const (
	KeyAuthor             = "author"
	KeyEmail              = "email"
	KeyLicense            = "license"
	KeyTemplate           = "template"
	KeyUseGit             = "useGit"
	KeyGitBaseURL         = "gitBaseUrl"
	KeyGitHubAuthToken    = "gitHubAuthToken"
	KeyGitRepoPrivate     = "gitRepoPrivate"
	KeyUseDocker          = "useDocker"
	KeyDockerHubNamespace = "dockerHubNamespace"
	KeyDockerHubUser      = "dockerHubUser"
	KeyDockerHubPassword  = "dockerHubPassword"
	KeyNodeVersions       = "nodeVersions"
	KeyLogFile            = "logFile"
)

// envSuffixes maps each key to the suffix of its environment override.
var envSuffixes = map[string]string{
	KeyAuthor:             "AUTHOR",
	KeyEmail:              "EMAIL",
	KeyLicense:            "LICENSE",
	KeyTemplate:           "TEMPLATE",
	KeyUseGit:             "USE_GIT",
	KeyGitBaseURL:         "GIT_BASE_URL",
	KeyGitHubAuthToken:    "GITHUB_TOKEN",
	KeyGitRepoPrivate:     "GIT_REPO_PRIVATE",
	KeyUseDocker:          "USE_DOCKER",
	KeyDockerHubNamespace: "DOCKER_NAMESPACE",
	KeyDockerHubUser:      "DOCKER_USER",
	KeyDockerHubPassword:  "DOCKER_PASSWORD",
	KeyNodeVersions:       "NODE_VERSIONS",
	KeyLogFile:            "LOG_FILE",
}
