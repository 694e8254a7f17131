package updater

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrDevBuild reports a version that does not name a release: an unset
// build version, "(devel)" from an untagged go install, or a Go
// pseudo-version.
var ErrDevBuild = errors.New("development build")

// pseudoVersion matches the timestamp and commit suffix of Go pseudo-versions
// such as v0.0.0-20260101120000-abcdef123456.
var pseudoVersion = regexp.MustCompile(`\d{14}-[0-9a-f]{12}$`)

// ReleaseVersion parses a release version, tolerating a leading "v" and
// build metadata ("1.4.0+dirty").
func ReleaseVersion(version string) (*semver.Version, error) {
	version = strings.TrimSpace(version)
	switch version {
	case "", "dev", "(devel)":
		return nil, ErrDevBuild
	}
	if pseudoVersion.MatchString(version) {
		return nil, ErrDevBuild
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return v, nil
}

// IsUpdateAvailable reports whether latest is newer than current. A
// prerelease is only offered to users already running a prerelease.
func IsUpdateAvailable(current, latest string) (bool, error) {
	cv, err := ReleaseVersion(current)
	if err != nil {
		return false, err
	}
	lv, err := ReleaseVersion(latest)
	if err != nil {
		return false, err
	}
	if lv.Prerelease() != "" && cv.Prerelease() == "" {
		return false, nil
	}
	return cv.LessThan(lv), nil
}
