package platform

import (
	"os"
	"runtime"
)

// SecretFileMode is applied to files that may hold tokens or passwords.
const SecretFileMode os.FileMode = 0600

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// RestrictToOwner makes path readable and writable by its owner only.
func RestrictToOwner(path string) error {
	return Chmod(path, SecretFileMode)
}
