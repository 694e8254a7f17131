package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imqueue/imq-cli/internal/branding"
)

// Directory and file name constants for the ~/.imq layout.
const (
	TemplatesDir       = "templates"
	CustomTemplatesDir = "custom-templates"
	CacheDir           = "cache"
	LogsDir            = "logs"
	ConfigFile         = "config.json"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetHomeRoot returns the CLI home directory.
// It checks the IMQ_HOME environment variable first, then falls back to ~/.imq.
func GetHomeRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetTemplatesRoot returns the shared template cache (a clone of the
// canonical templates repository). IMQ_TEMPLATES overrides it.
func GetTemplatesRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("TEMPLATES")); v != "" {
		return v, nil
	}
	return underHome(TemplatesDir)
}

// GetCustomTemplatesRoot returns the directory holding templates fetched
// from arbitrary git repositories.
func GetCustomTemplatesRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("CUSTOM_TEMPLATES")); v != "" {
		return v, nil
	}
	return underHome(CustomTemplatesDir)
}

// GetCacheDir returns the directory for cached remote documents.
func GetCacheDir() (string, error) {
	return underHome(CacheDir)
}

// GetLogsDir returns the default directory for log files.
func GetLogsDir() (string, error) {
	return underHome(LogsDir)
}

// GetConfigPath returns the path of the JSON config document.
func GetConfigPath() (string, error) {
	return underHome(ConfigFile)
}

func underHome(name string) (string, error) {
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
