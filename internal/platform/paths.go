package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// SamePath reports whether a and b refer to the same location once made
// absolute and stripped of symlinks. Paths that do not exist yet are compared
// lexically.
func SamePath(a, b string) (bool, error) {
	ra, err := canonical(a)
	if err != nil {
		return false, err
	}
	rb, err := canonical(b)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}

// IsWorkingDir reports whether path resolves to the process working directory.
func IsWorkingDir(path string) (bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return false, fmt.Errorf("getting current directory: %w", err)
	}
	return SamePath(path, cwd)
}

func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}
