package command

import (
	"context"
	"strings"
	"sync"
)

// Call is one invocation captured by a Recorder.
type Call struct {
	Dir  string
	Env  []string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return Format(c.Name, c.Args...)
}

// Recorder is a Runner that records calls instead of running them.
// Handler, when set, decides each call's output and error.
type Recorder struct {
	Missing map[string]bool
	Handler func(call Call) ([]byte, error)

	mu    sync.Mutex
	calls []Call
}

// LookPath implements Runner.
func (r *Recorder) LookPath(tool string) error {
	if r.Missing[tool] {
		return &MissingToolError{Tool: tool}
	}
	return nil
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	call := Call{Dir: dir, Env: env, Name: name, Args: append([]string(nil), args...)}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if r.Handler != nil {
		return r.Handler(call)
	}
	return nil, nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded calls rendered as command lines.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// HasPrefix reports whether any recorded command line starts with prefix.
func (r *Recorder) HasPrefix(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
