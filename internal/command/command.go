package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes an external program inside dir. env is appended to the
// current process environment. Standard output is returned; on a non-zero
// exit the captured standard error is carried by *ExitError.
type Runner interface {
	LookPath(tool string) error
	Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)
}

// MissingToolError reports a required executable that is not on PATH.
type MissingToolError struct {
	Tool string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s is required but not found in PATH", e.Tool)
}

// ExitError reports a program that exited with a non-zero status.
type ExitError struct {
	Cmd    string
	Stderr string
	Code   int
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d\n%s", e.Cmd, e.Code, e.Stderr)
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

// LookPath returns a MissingToolError when tool cannot be found.
func (Exec) LookPath(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return &MissingToolError{Tool: tool}
	}
	return nil
}

// Run implements Runner.
func (Exec) Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ExitError{
			Cmd:    Format(name, args...),
			Stderr: strings.TrimSpace(stderr.String()),
			Code:   exitErr.ExitCode(),
		}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, &MissingToolError{Tool: name}
	}
	return nil, fmt.Errorf("running %s: %w", Format(name, args...), err)
}

// Format renders a command line for messages.
func Format(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// Require checks every tool with r and returns the first missing one.
func Require(r Runner, tools ...string) error {
	for _, tool := range tools {
		if err := r.LookPath(tool); err != nil {
			return err
		}
	}
	return nil
}
