package validate

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var (
	emailPattern     = regexp.MustCompile(`(?i)^[-a-z0-9.]+@[-a-z0-9.]+$`)
	namespacePattern = regexp.MustCompile(`(?i)^[-_a-z0-9]+$`)
	tokenPattern     = regexp.MustCompile(`^[a-f0-9]{40}$`)
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsNamespace reports whether s is a valid user or organization handle:
// letters, digits, dashes and underscores only.
func IsNamespace(s string) bool {
	return namespacePattern.MatchString(s)
}

// IsGitHubToken reports whether s has the syntax of a classic GitHub
// personal access token (40 lowercase hex characters).
func IsGitHubToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// IsVersion reports whether s is a strict semantic version ("1.2.3",
// "1.0.0-0"). A leading "v" is rejected.
func IsVersion(s string) bool {
	_, err := semver.StrictNewVersion(s)
	return err == nil
}
