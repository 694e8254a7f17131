package updater

import (
	"errors"
	"testing"
)

func TestReleaseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "1.4.0", want: "1.4.0"},
		{in: "v1.4.0", want: "1.4.0"},
		{in: " v2.0.0-rc.1 ", want: "2.0.0-rc.1"},
		{in: "1.4.0+dirty", want: "1.4.0+dirty"},
		{in: "", wantErr: ErrDevBuild},
		{in: "dev", wantErr: ErrDevBuild},
		{in: "(devel)", wantErr: ErrDevBuild},
		{in: "v0.0.0-20260101120000-abcdef123456", wantErr: ErrDevBuild},
		{in: "v1.4.1-0.20260101120000-abcdef123456", wantErr: ErrDevBuild},
	}
	for _, tt := range tests {
		v, err := ReleaseVersion(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReleaseVersion(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ReleaseVersion(%q) error: %v", tt.in, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("ReleaseVersion(%q) = %s, want %s", tt.in, v, tt.want)
		}
	}

	if _, err := ReleaseVersion("not-a-version"); err == nil || errors.Is(err, ErrDevBuild) {
		t.Errorf("garbage version error = %v", err)
	}
}

func TestIsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name            string
		current, latest string
		want            bool
	}{
		{"newer patch", "1.4.0", "v1.4.1", true},
		{"newer major", "v1.9.3", "v2.0.0", true},
		{"same release", "v1.4.0", "1.4.0", false},
		{"ahead of latest", "1.5.0", "1.4.0", false},
		{"dirty build of same release", "1.4.0+dirty", "1.4.0", false},
		{"prerelease of the latest release", "1.4.0-rc.2", "1.4.0", true},
		{"prerelease not offered to stable", "1.4.0", "1.5.0-beta.1", false},
		{"newer prerelease for prerelease user", "1.5.0-beta.1", "1.5.0-beta.2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsUpdateAvailable(tt.current, tt.latest)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsUpdateAvailable(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}

	if _, err := IsUpdateAvailable("dev", "1.0.0"); !errors.Is(err, ErrDevBuild) {
		t.Errorf("dev build error = %v", err)
	}
}
