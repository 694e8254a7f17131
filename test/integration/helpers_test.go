//go:build integration

package integration_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // IMQ_HOME, holds config and template caches
	WorkDir string // working directory of the run
}

// setupTestEnv creates isolated temp directories and sets environment
// variables so every imq operation is sandboxed. The env vars and working
// directory are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		WorkDir: t.TempDir(),
	}
	t.Setenv("IMQ_HOME", env.HomeDir)
	t.Setenv("IMQ_TEMPLATES", filepath.Join(env.HomeDir, "templates"))
	t.Setenv("IMQ_CUSTOM_TEMPLATES", filepath.Join(env.HomeDir, "custom-templates"))
	// Keep user git config (signing, hooks) out of the way.
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Chdir(env.WorkDir)
	return env
}

// requireTool skips the test when tool is not on PATH.
func requireTool(t *testing.T, tool string) {
	t.Helper()
	if _, err := exec.LookPath(tool); err != nil {
		t.Skipf("%s not available: %v", tool, err)
	}
}

// git runs git in dir with a fixed identity and fails the test on error.
func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// bareRepo creates an empty bare repository and returns its path.
func bareRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	git(t, t.TempDir(), "init", "--bare", dir)
	return dir
}

// templatesRepo creates a bare repository holding a "default" template and
// returns its path.
func templatesRepo(t *testing.T) string {
	t.Helper()
	remote := bareRepo(t)
	work := t.TempDir()
	git(t, work, "init")
	writeTemplate(t, filepath.Join(work, "default"))
	git(t, work, "add", ".")
	git(t, work, "commit", "-m", "templates")
	git(t, work, "remote", "add", "origin", remote)
	git(t, work, "push", "origin", "HEAD")
	return remote
}

// writeTemplate writes a minimal service template into dir.
func writeTemplate(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "%SERVICE_NAME", "version": "%SERVICE_VERSION", "description": "%SERVICE_DESCRIPTION", "private": true}`+"\n")
	writeFile(t, filepath.Join(dir, "src", "Service.ts"), "export class %SERVICE_CLASS_NAME {}\n")
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM node:%NODE_VERSION\n")
	writeFile(t, filepath.Join(dir, ".travis.yml"), "language: node_js\nnode_js:\n%TRAVIS_NODE_TAGS\nservices:\n- docker\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}
