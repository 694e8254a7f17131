package userdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHomeRoot_EnvOverride(t *testing.T) {
	t.Setenv("IMQ_HOME", "/tmp/test-imq")
	root, err := GetHomeRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "/tmp/test-imq" {
		t.Errorf("expected /tmp/test-imq, got %s", root)
	}
}

func TestGetHomeRoot_Default(t *testing.T) {
	t.Setenv("IMQ_HOME", "")
	root, err := GetHomeRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".imq")
	if root != expected {
		t.Errorf("expected %s, got %s", expected, root)
	}
}

func TestLayoutUnderHome(t *testing.T) {
	t.Setenv("IMQ_HOME", "/tmp/imq")
	t.Setenv("IMQ_TEMPLATES", "")
	t.Setenv("IMQ_CUSTOM_TEMPLATES", "")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"templates", GetTemplatesRoot, "/tmp/imq/templates"},
		{"custom templates", GetCustomTemplatesRoot, "/tmp/imq/custom-templates"},
		{"cache", GetCacheDir, "/tmp/imq/cache"},
		{"logs", GetLogsDir, "/tmp/imq/logs"},
		{"config", GetConfigPath, "/tmp/imq/config.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetTemplatesRoot_EnvOverride(t *testing.T) {
	t.Setenv("IMQ_TEMPLATES", "/srv/templates")
	got, err := GetTemplatesRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/srv/templates" {
		t.Errorf("expected /srv/templates, got %s", got)
	}
}
