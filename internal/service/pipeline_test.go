package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/gitops"
	"github.com/imqueue/imq-cli/internal/logger"
	"github.com/imqueue/imq-cli/internal/scaffold"
	"github.com/imqueue/imq-cli/internal/templates"
	"github.com/imqueue/imq-cli/internal/travis"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/spf13/afero"
)

const testToken = "0123456789abcdef0123456789abcdef01234567"

var templateFiles = map[string]string{
	"package.json":   `{"name": "%SERVICE_NAME", "version": "%SERVICE_VERSION", "author": "%SERVICE_AUTHOR_NAME <%SERVICE_AUTHOR_EMAIL>"}`,
	"src/Service.ts": "export class %SERVICE_CLASS_NAME {}\n",
	"Dockerfile":     "FROM node:%NODE_VERSION\n",
	".dockerignore":  "node_modules\n",
	".travis.yml": "language: node_js\n" +
		"node_js:\n" +
		"%TRAVIS_NODE_TAGS\n" +
		"services:\n" +
		"- docker\n" +
		"env:\n" +
		"  global:\n" +
		"  - secure: \"%DOCKER_USER_SECRET\"\n" +
		"  - secure: \"%DOCKER_PASS_SECRET\"\n",
	".git/HEAD": "ref: refs/heads/master\n",
}

func writeTemplate(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "template")
	for name, content := range templateFiles {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

type fakeTemplates struct {
	path string
	refs []string
}

func (f *fakeTemplates) Resolve(_ context.Context, ref string) (templates.ResolvedTemplate, error) {
	f.refs = append(f.refs, ref)
	return templates.ResolvedTemplate{Path: f.path, Kind: templates.KindLocal}, nil
}

type repoCall struct {
	URL, Description string
	Private          bool
}

type fakeGitHub struct {
	token string
	calls []repoCall
	err   error
}

func (f *fakeGitHub) CreateRepository(_ context.Context, url, description string, private bool) error {
	f.calls = append(f.calls, repoCall{url, description, private})
	return f.err
}

type fakeCommitter struct {
	commits []gitops.Commit
	tags    []string
	err     error
}

func (f *fakeCommitter) InitialCommit(_ context.Context, _ string, c gitops.Commit) error {
	f.commits = append(f.commits, c)
	return f.err
}

func (f *fakeCommitter) Tag(_ context.Context, _, version string) error {
	f.tags = append(f.tags, version)
	return nil
}

type fakeInstaller struct {
	dirs []string
	err  error
}

func (f *fakeInstaller) Install(_ context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return f.err
}

type fakeNodes struct{ version string }

func (f fakeNodes) Resolve(context.Context, string) (string, error) { return f.version, nil }

// travisServer fakes the Travis API. The first failSyncs sync calls fail.
type travisServer struct {
	*httptest.Server
	priv      *rsa.PrivateKey
	failSyncs int32
	syncs     int32
	activated int32
}

func newTravisServer(t *testing.T, failSyncs int32) *travisServer {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	ts := &travisServer{priv: priv, failSyncs: failSyncs}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/github", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "travis-token"})
	})
	mux.HandleFunc("GET /repos/acme/my-service/key", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"key": pubPEM})
	})
	mux.HandleFunc("POST /users/sync", func(w http.ResponseWriter, r *http.Request) {
		if n := atomic.AddInt32(&ts.syncs, 1); n <= atomic.LoadInt32(&ts.failSyncs) {
			http.Error(w, "sync in progress", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /hooks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"hooks": []travis.Hook{
			{ID: 7, Name: "my-service", OwnerName: "acme", Active: false},
		}})
	})
	mux.HandleFunc("PUT /hooks/7", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ts.activated, 1)
		w.WriteHeader(http.StatusOK)
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type harness struct {
	pipeline  *Pipeline
	runner    *command.Recorder
	templates *fakeTemplates
	github    *fakeGitHub
	committer *fakeCommitter
	installer *fakeInstaller
	out       *bytes.Buffer
	errOut    *bytes.Buffer
}

func newHarness(t *testing.T, defaults config.Defaults, ci CIClient, answers ...string) *harness {
	t.Helper()
	t.Chdir(t.TempDir())

	h := &harness{
		runner:    &command.Recorder{},
		templates: &fakeTemplates{path: writeTemplate(t)},
		github:    &fakeGitHub{},
		committer: &fakeCommitter{},
		installer: &fakeInstaller{},
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
	}
	prompter := ui.NewScripted(answers...)
	h.pipeline = &Pipeline{
		Templates: h.templates,
		GitHub: func(_ context.Context, token string) RepositoryCreator {
			h.github.token = token
			return h.github
		},
		CI:        ci,
		Nodes:     fakeNodes{version: "20.11.1"},
		Committer: h.committer,
		Installer: h.installer,
		Runner:    h.runner,
		Prompter:  prompter,
		Console:   ui.NewConsole(h.out, h.errOut),
		Log:       logger.Nop(),
		Fs:        afero.NewOsFs(),
		Defaults:  defaults,
		Builder:   &TagBuilder{Defaults: defaults, Prompter: prompter, Now: fixedNow},
	}
	return h
}

func baseDefaults() config.Defaults {
	return config.Defaults{
		Author:  "Jane Doe",
		Email:   "jane@example.com",
		License: "MIT",
	}
}

func gitDefaults() config.Defaults {
	d := baseDefaults()
	d.UseGit = true
	d.GitBaseURL = "git@github.com:acme"
	d.GitHubAuthToken = testToken
	return d
}

func travisClient(ts *travisServer) *travis.Client {
	return travis.New(
		travis.WithBaseURL(ts.URL),
		travis.WithHTTPClient(ts.Client()),
		travis.WithSyncRetry(3, 0),
	)
}

func TestCreateWithoutGit(t *testing.T) {
	h := newHarness(t, baseDefaults(), nil)

	state, err := h.pipeline.Create(context.Background(), Request{
		Name:        "My Service",
		Path:        "./out",
		SkipInstall: true,
	})
	if err != nil {
		t.Fatalf("Create error: %v\n%s", err, h.errOut)
	}
	if !state.Created || state.GitRepoInitialized || state.Dockerized || state.Installed || state.Committed {
		t.Errorf("state = %+v", state)
	}

	out, _ := filepath.Abs("out")
	pkg := readFile(t, filepath.Join(out, "package.json"))
	for _, want := range []string{`"name": "my-service"`, `"version": "1.0.0-0"`, "Jane Doe <jane@example.com>"} {
		if !strings.Contains(pkg, want) {
			t.Errorf("package.json missing %q:\n%s", want, pkg)
		}
	}

	if got := readFile(t, filepath.Join(out, "src", "MyService.ts")); got != "export class MyService {}\n" {
		t.Errorf("MyService.ts = %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "src", "Service.ts")); !os.IsNotExist(err) {
		t.Error("src/Service.ts should have been renamed")
	}
	if !strings.Contains(readFile(t, filepath.Join(out, "LICENSE")), "Copyright (c) 2026 Jane Doe <jane@example.com>") {
		t.Error("LICENSE does not carry year and author")
	}

	for _, gone := range []string{"Dockerfile", ".dockerignore", ".git"} {
		if _, err := os.Stat(filepath.Join(out, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist", gone)
		}
	}
	travisYML := readFile(t, filepath.Join(out, scaffold.TravisConfig))
	if strings.Contains(travisYML, "services:") || strings.Contains(travisYML, "- docker") {
		t.Errorf("services section not removed:\n%s", travisYML)
	}
	if !strings.Contains(travisYML, "node_js:\n- \"node\"\n- \"lts/*\"\n") {
		t.Errorf("node versions not rendered:\n%s", travisYML)
	}
	if strings.Contains(travisYML, "%") {
		t.Errorf("unsubstituted placeholder:\n%s", travisYML)
	}

	if len(h.runner.Calls()) != 0 || len(h.github.calls) != 0 || len(h.installer.dirs) != 0 {
		t.Error("no external command expected without git and install")
	}
	if h.templates.refs[0] != "" {
		t.Errorf("template ref = %q, want default", h.templates.refs[0])
	}
}

func TestCreateWithGitAndDocker(t *testing.T) {
	ts := newTravisServer(t, 0)
	d := gitDefaults()
	d.UseDocker = true
	d.DockerHubNamespace = "acme"
	d.DockerHubUser = "jane"
	d.DockerHubPassword = "s3cret"
	h := newHarness(t, d, travisClient(ts))

	state, err := h.pipeline.Create(context.Background(), Request{Name: "MyService", Path: "svc"})
	if err != nil {
		t.Fatalf("Create error: %v\n%s", err, h.errOut)
	}
	want := ProvisioningState{Created: true, GitRepoInitialized: true, Dockerized: true, Installed: true, Committed: true}
	if *state != want {
		t.Errorf("state = %+v, want %+v", *state, want)
	}

	if h.github.token != testToken {
		t.Errorf("github token = %q", h.github.token)
	}
	if len(h.github.calls) != 1 || h.github.calls[0].URL != "git@github.com:acme/my-service.git" {
		t.Errorf("repository calls = %+v", h.github.calls)
	}
	out, _ := filepath.Abs("svc")
	if got := readFile(t, filepath.Join(out, "Dockerfile")); got != "FROM node:20.11.1\n" {
		t.Errorf("Dockerfile = %q", got)
	}
	travisYML := readFile(t, filepath.Join(out, scaffold.TravisConfig))
	if !strings.Contains(travisYML, "services:\n- docker\n") {
		t.Errorf("services section should be kept:\n%s", travisYML)
	}
	if strings.Contains(travisYML, "secure: \"\"") || strings.Contains(travisYML, "%DOCKER") {
		t.Errorf("secrets not rendered:\n%s", travisYML)
	}

	if len(h.committer.commits) != 1 {
		t.Fatalf("commits = %+v", h.committer.commits)
	}
	c := h.committer.commits[0]
	if c.Origin != "git@github.com:acme/my-service.git" || c.Author != "Jane Doe" || c.Email != "jane@example.com" {
		t.Errorf("commit = %+v", c)
	}
	if len(h.committer.tags) != 1 || h.committer.tags[0] != DefaultVersion {
		t.Errorf("tags = %v", h.committer.tags)
	}
	if len(h.installer.dirs) != 1 || h.installer.dirs[0] != out {
		t.Errorf("install dirs = %v", h.installer.dirs)
	}
	if atomic.LoadInt32(&ts.activated) != 1 {
		t.Error("hook not activated")
	}
}

func TestCreateDockerNeedsRepository(t *testing.T) {
	d := baseDefaults()
	d.UseDocker = true
	d.DockerHubNamespace = "acme"
	h := newHarness(t, d, nil)

	state, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "out", SkipInstall: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if state.Dockerized {
		t.Error("service must not be dockerized without a repository")
	}
	if !strings.Contains(h.errOut.String(), "needs a GitHub repository") {
		t.Errorf("missing warning, stderr:\n%s", h.errOut)
	}
}

func TestCreateTravisSyncRetry(t *testing.T) {
	tests := []struct {
		name      string
		failSyncs int32
		syncs     int32
		warning   bool
	}{
		{name: "succeeds after two failures", failSyncs: 2, syncs: 3},
		{name: "exhausted budget is a warning", failSyncs: 100, syncs: 4, warning: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTravisServer(t, tt.failSyncs)
			h := newHarness(t, gitDefaults(), travisClient(ts))

			state, err := h.pipeline.Create(context.Background(), Request{Name: "my-service", Path: "out"})
			if err != nil {
				t.Fatalf("Create error: %v\n%s", err, h.errOut)
			}
			if !state.Committed {
				t.Errorf("state = %+v", state)
			}
			if got := atomic.LoadInt32(&ts.syncs); got != tt.syncs {
				t.Errorf("sync attempts = %d, want %d", got, tt.syncs)
			}
			warned := strings.Contains(h.errOut.String(), "travis sync failed")
			if warned != tt.warning {
				t.Errorf("warning printed = %v, stderr:\n%s", warned, h.errOut)
			}
			if atomic.LoadInt32(&ts.activated) != 1 {
				t.Error("hook not activated")
			}
		})
	}
}

func TestCreateRollsBackNewDestination(t *testing.T) {
	ts := newTravisServer(t, 0)
	h := newHarness(t, gitDefaults(), travisClient(ts))
	h.committer.err = errors.New("push rejected")

	state, err := h.pipeline.Create(context.Background(), Request{Name: "my-service", Path: "./out2"})
	var reported *ReportedError
	if !errors.As(err, &reported) {
		t.Fatalf("error = %v, want *ReportedError", err)
	}
	if !state.GitRepoInitialized || state.Committed {
		t.Errorf("state = %+v", state)
	}
	if _, err := os.Stat("out2"); !os.IsNotExist(err) {
		t.Error("out2 should have been removed")
	}
	stderr := h.errOut.String()
	if !strings.Contains(stderr, "push rejected") {
		t.Errorf("error not printed:\n%s", stderr)
	}
	if !strings.Contains(stderr, "left in place") {
		t.Errorf("remote repository warning missing:\n%s", stderr)
	}
}

func TestCreateRollbackKeepsExistingEntries(t *testing.T) {
	h := newHarness(t, baseDefaults(), nil)
	h.installer.err = errors.New("npm failed")

	if err := os.MkdirAll("existing", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("existing", ".keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "existing"})
	if err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir("existing")
	if err != nil {
		t.Fatalf("existing destination removed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != ".keep" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("entries after rollback = %v, want [.keep]", names)
	}
}

func TestCreateNeverRemovesWorkingDirectory(t *testing.T) {
	h := newHarness(t, baseDefaults(), nil)
	h.installer.err = errors.New("npm failed")

	_, err := h.pipeline.Create(context.Background(), Request{Name: "svc"})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat("package.json"); err != nil {
		t.Errorf("generated files in the working directory should stay: %v", err)
	}
	if !strings.Contains(h.errOut.String(), "current working directory") {
		t.Errorf("missing cwd warning:\n%s", h.errOut)
	}
}

func TestCreateMissingTool(t *testing.T) {
	h := newHarness(t, gitDefaults(), nil)
	h.runner.Missing = map[string]bool{"git": true}

	_, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "out"})
	var missing *command.MissingToolError
	if !errors.As(err, &missing) || missing.Tool != "git" {
		t.Fatalf("error = %v, want missing git", err)
	}
	if _, err := os.Stat("out"); !os.IsNotExist(err) {
		t.Error("nothing should be created when a tool is missing")
	}
	if len(h.templates.refs) != 0 {
		t.Error("template resolved before tool check")
	}
}

func TestCreateRefusesNonEmptyDestination(t *testing.T) {
	h := newHarness(t, baseDefaults(), nil)
	if err := os.MkdirAll("busy", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("busy", "README.md"), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "busy", SkipInstall: true})
	var notEmpty *scaffold.NotEmptyError
	if !errors.As(err, &notEmpty) {
		t.Fatalf("error = %v, want NotEmptyError", err)
	}
	if got := readFile(t, filepath.Join("busy", "README.md")); got != "mine" {
		t.Errorf("existing file changed: %q", got)
	}
}

func TestCreateRefusesFileDestination(t *testing.T) {
	h := newHarness(t, baseDefaults(), nil)
	if err := os.WriteFile("notes.txt", []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "notes.txt", SkipInstall: true})
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Fatalf("error = %v, want not a directory", err)
	}
	if got := readFile(t, "notes.txt"); got != "keep me" {
		t.Errorf("notes.txt = %q after failed run", got)
	}
	if len(h.templates.refs) != 0 {
		t.Errorf("template resolved for a refused destination: %v", h.templates.refs)
	}
}

func TestCreateKeepsUnreadableDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	h := newHarness(t, baseDefaults(), nil)
	if err := os.MkdirAll("locked", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("locked", "data"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod("locked", 0o300); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod("locked", 0o755) })

	if _, err := h.pipeline.Create(context.Background(), Request{Name: "svc", Path: "locked", SkipInstall: true}); err == nil {
		t.Fatal("expected error")
	}
	if err := os.Chmod("locked", 0o755); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join("locked", "data")); got != "x" {
		t.Errorf("data = %q after failed run", got)
	}
}

func TestCreatePromptsForGitHubToken(t *testing.T) {
	ts := newTravisServer(t, 0)
	d := gitDefaults()
	d.GitHubAuthToken = ""
	h := newHarness(t, d, travisClient(ts), testToken)

	if _, err := h.pipeline.Create(context.Background(), Request{Name: "my-service", Path: "out", SkipInstall: true}); err != nil {
		t.Fatalf("Create error: %v\n%s", err, h.errOut)
	}
	if h.github.token != testToken {
		t.Errorf("token = %q", h.github.token)
	}
}
