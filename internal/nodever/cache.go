package nodever

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/imqueue/imq-cli/internal/userdata"
)

const cacheFileName = "node-versions.json"

// indexCache is the on-disk copy of the sorted index.
type indexCache struct {
	CheckedAt time.Time `json:"checked_at"`
	Versions  []Release `json:"versions"`
}

func (ic *indexCache) stale(maxAge time.Duration) bool {
	return ic == nil || time.Since(ic.CheckedAt) > maxAge
}

// loadCache returns nil, nil when caching is off or nothing is cached yet.
func (c *Client) loadCache() (*indexCache, error) {
	if c.cacheDir == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(c.cacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading node version cache: %w", err)
	}

	var ic indexCache
	if err := json.Unmarshal(data, &ic); err != nil {
		return nil, fmt.Errorf("parsing node version cache: %w", err)
	}
	return &ic, nil
}

func (c *Client) saveCache(versions []Release) error {
	if c.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.cacheDir, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(indexCache{CheckedAt: time.Now(), Versions: versions})
	if err != nil {
		return fmt.Errorf("marshaling node version cache: %w", err)
	}

	path := filepath.Join(c.cacheDir, cacheFileName)
	if err := os.WriteFile(path, data, userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing node version cache: %w", err)
	}
	return nil
}
