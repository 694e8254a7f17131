package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "config.json"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	d, err := s.Defaults()
	if err != nil {
		t.Fatalf("Defaults error: %v", err)
	}
	if d != (Defaults{}) {
		t.Errorf("expected zero Defaults, got %+v", d)
	}
}

func TestDefaults(t *testing.T) {
	path := writeConfig(t, `{
  "author": "Jane Doe",
  "email": "jane@example.com",
  "license": "MIT",
  "useGit": true,
  "gitBaseUrl": "git@github.com:imqueue",
  "gitRepoPrivate": false,
  "useDocker": true,
  "dockerHubNamespace": "imqueue"
}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	d, err := s.Defaults()
	if err != nil {
		t.Fatalf("Defaults error: %v", err)
	}
	if d.Author != "Jane Doe" || d.Email != "jane@example.com" || d.License != "MIT" {
		t.Errorf("unexpected identity fields: %+v", d)
	}
	if !d.UseGit || !d.UseDocker || d.GitRepoPrivate {
		t.Errorf("unexpected flags: %+v", d)
	}
	if d.DockerHubNamespace != "imqueue" {
		t.Errorf("DockerHubNamespace = %q", d.DockerHubNamespace)
	}
	if got := d.GitHubNamespace(); got != "imqueue" {
		t.Errorf("GitHubNamespace = %q, want imqueue", got)
	}
}

func TestDefaultsEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"author": "Jane Doe"}`)
	t.Setenv("IMQ_AUTHOR", "John Roe")
	t.Setenv("IMQ_USE_DOCKER", "true")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	d, err := s.Defaults()
	if err != nil {
		t.Fatalf("Defaults error: %v", err)
	}
	if d.Author != "John Roe" {
		t.Errorf("Author = %q, want env override", d.Author)
	}
	if !d.UseDocker {
		t.Error("UseDocker should come from IMQ_USE_DOCKER")
	}
}

func TestGitHubNamespace(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"git@github.com:imqueue", "imqueue"},
		{"https://github.com/acme/", "acme"},
		{"acme", "acme"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (Defaults{GitBaseURL: tt.base}).GitHubNamespace(); got != tt.want {
			t.Errorf("GitHubNamespace(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestSetPreservesKeyCaseAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imq", "config.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Set("gitHubAuthToken", "0123456789abcdef0123456789abcdef01234567"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := s.Set("useDocker", "true"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("config is not JSON: %v", err)
	}
	if _, ok := doc["gitHubAuthToken"]; !ok {
		t.Errorf("key case not preserved: %s", data)
	}
	if doc["useDocker"] != true {
		t.Errorf("useDocker = %v, want boolean true", doc["useDocker"])
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %o, want 600", info.Mode().Perm())
		}
	}

	if got := s.Get("useDocker"); got != true {
		t.Errorf("Get after Set = %v", got)
	}
}

func TestSetNullRemovesKey(t *testing.T) {
	path := writeConfig(t, `{"author": "Jane", "email": "jane@example.com"}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Set("author", "null"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "email" {
		t.Errorf("Keys = %v, want [email]", keys)
	}
}

func TestSetStringKeepsLiteral(t *testing.T) {
	path := writeConfig(t, `{}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.SetString(KeyDockerHubPassword, "null"); err != nil {
		t.Fatalf("SetString error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc[KeyDockerHubPassword] != "null" {
		t.Errorf("stored %v, want the string \"null\"", doc[KeyDockerHubPassword])
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
		{"MIT", `"MIT"`},
		{`["latest","lts"]`, `["latest","lts"]`},
		{` {"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		v, err := Coerce(tt.in)
		if err != nil {
			t.Fatalf("Coerce(%q) error: %v", tt.in, err)
		}
		got, _ := json.Marshal(v)
		if string(got) != tt.want {
			t.Errorf("Coerce(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := Coerce("[broken"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestCheck(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, err := Open(writeConfig(t, ""))
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		if _, err := s.Check(); !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty, got %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		s, err := Open(writeConfig(t, `{"author":"Jane","email":"jane@example.com","useGit":false}`))
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		res, err := s.Check()
		if err != nil {
			t.Fatalf("Check error: %v", err)
		}
		if !res.Valid {
			t.Errorf("expected valid, issues: %v", res.Issues)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		s, err := Open(writeConfig(t, `{"email":"not an email","useGit":"yes"}`))
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		res, err := s.Check()
		if err != nil {
			t.Fatalf("Check error: %v", err)
		}
		if res.Valid {
			t.Fatal("expected invalid config")
		}
		paths := map[string]bool{}
		for _, issue := range res.Issues {
			paths[issue.Path] = true
		}
		if !paths["/email"] || !paths["/useGit"] {
			t.Errorf("issues should name /email and /useGit: %v", res.Issues)
		}
	})
}
