package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/imqueue/imq-cli/internal/branding"
)

// refreshTimeout bounds the background release check.
const refreshTimeout = 5 * time.Second

// CheckAndPrintBanner prints an update banner from the cached check when a
// newer version is known. It never blocks: a stale cache is refreshed in a
// background goroutine for the next invocation. Development builds are
// never checked.
func (u *Updater) CheckAndPrintBanner(w io.Writer, cacheDir string) {
	if _, err := ReleaseVersion(u.currentVersion); err != nil {
		return
	}

	cache, err := LoadCache(cacheDir)
	if err != nil {
		return
	}

	if cache != nil && cache.UpdateAvailable && cache.CurrentVersion == u.currentVersion {
		PrintUpdateBanner(w, cache.CurrentVersion, cache.LatestVersion)
	}

	if IsCacheStale(cache, u.currentVersion, DefaultCacheMaxAge) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			_ = u.Refresh(ctx, cacheDir)
		}()
	}
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, current, latest string) {
	fmt.Fprintf(w, "\nNew version %s of %s available (current %s)\n", latest, branding.CLIName(), current)
	fmt.Fprintf(w, "    Run `go install %s@latest` to upgrade\n\n", branding.GoModule())
}

// Refresh fetches the latest release and rewrites the cache.
func (u *Updater) Refresh(ctx context.Context, cacheDir string) error {
	release, err := u.CheckLatestVersion(ctx)
	if err != nil {
		return err
	}

	available, err := IsUpdateAvailable(u.currentVersion, release.Version)
	if err != nil {
		return err
	}

	return SaveCache(cacheDir, &VersionCache{
		LatestVersion:   release.Version,
		CurrentVersion:  u.currentVersion,
		CheckedAt:       time.Now(),
		UpdateAvailable: available,
	})
}
