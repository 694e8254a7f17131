package scaffold

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/imqueue/imq-cli/internal/userdata"
	"github.com/spf13/afero"
)

// ServiceSource is the template's service implementation file, renamed after
// the service class during generation.
const ServiceSource = "src/Service.ts"

// Files removed when a service is not dockerized.
var dockerArtifacts = []string{"Dockerfile", ".dockerignore"}

// TravisConfig is the CI configuration file name.
const TravisConfig = ".travis.yml"

// Result holds the outcome of a compile pass.
type Result struct {
	Dir   string
	Files []string // rewritten files, relative to Dir
}

// NotEmptyError reports a destination that already holds visible files.
type NotEmptyError struct {
	Dir     string
	Entries []string
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("destination %s is not empty (%s); remove existing files first",
		e.Dir, strings.Join(e.Entries, ", "))
}

// Copy copies the template tree src into dst, skipping .git directories.
// dst is created when missing; a dst holding non-hidden entries is refused.
func Copy(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template %s is not a directory", src)
	}

	if err := ensureEmpty(fsys, dst); err != nil {
		return err
	}
	if err := fsys.MkdirAll(dst, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	return afero.Walk(fsys, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}

		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, info.Mode().Perm()|0700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(fsys, path, target, info.Mode().Perm())
	})
}

func ensureEmpty(fsys afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading destination %s: %w", dir, err)
	}

	var visible []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			visible = append(visible, e.Name())
		}
	}
	if len(visible) > 0 {
		return &NotEmptyError{Dir: dir, Entries: visible}
	}
	return nil
}

func copyFile(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := afero.WriteFile(fsys, dst, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// Compile rewrites every regular file under dir in place, substituting tags.
// Directory names are never changed. Files whose content does not change are
// not rewritten.
func Compile(fsys afero.Fs, dir string, tags Tags) (*Result, error) {
	result := &Result{Dir: dir}
	r := replacer(tags)
	if r == nil {
		return result, nil
	}

	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		compiled := r.Replace(string(data))
		if compiled == string(data) {
			return nil
		}
		if err := afero.WriteFile(fsys, path, []byte(compiled), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		result.Files = append(result.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", dir, err)
	}
	return result, nil
}

// WriteLicense writes text to dir/LICENSE, replacing any existing file.
func WriteLicense(fsys afero.Fs, dir, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	path := filepath.Join(dir, "LICENSE")
	if err := afero.WriteFile(fsys, path, []byte(text), userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RenameServiceSource renames src/Service.ts after className and returns the
// new path. It returns "" when the template has no such file.
func RenameServiceSource(fsys afero.Fs, dir, className string) (string, error) {
	from := filepath.Join(dir, filepath.FromSlash(ServiceSource))
	ok, err := afero.Exists(fsys, from)
	if err != nil || !ok {
		return "", err
	}

	to := filepath.Join(filepath.Dir(from), className+filepath.Ext(from))
	if to == from {
		return to, nil
	}
	if err := fsys.Rename(from, to); err != nil {
		return "", fmt.Errorf("renaming %s: %w", from, err)
	}
	return to, nil
}

// StripDocker removes the Docker build files from dir and cuts the
// top-level services: block out of the CI configuration.
func StripDocker(fsys afero.Fs, dir string) error {
	for _, name := range dockerArtifacts {
		if err := fsys.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}

	path := filepath.Join(dir, TravisConfig)
	data, err := afero.ReadFile(fsys, path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cut := CutSection(data, "services")
	if bytes.Equal(cut, data) {
		return nil
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, cut, info.Mode().Perm())
}

// CutSection removes a top-level YAML mapping key and everything nested
// under it, up to the next top-level line.
func CutSection(doc []byte, key string) []byte {
	lines := strings.SplitAfter(string(doc), "\n")
	var out strings.Builder
	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		topLevel := trimmed != "" && !strings.HasPrefix(trimmed, " ") &&
			!strings.HasPrefix(trimmed, "\t") && !strings.HasPrefix(trimmed, "#") &&
			!strings.HasPrefix(trimmed, "-")

		if topLevel {
			skipping = strings.HasPrefix(trimmed, key+":")
		}
		if !skipping {
			out.WriteString(line)
		}
	}
	return []byte(out.String())
}
