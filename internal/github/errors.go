package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrRepositoryExists is returned when the target repository is already
// present on GitHub.
var ErrRepositoryExists = errors.New("repository already exists")

// ErrPrivateUnavailable is returned when the account cannot own private
// repositories.
var ErrPrivateUnavailable = errors.New("private repositories are disabled on your GitHub account")

// FieldError is one entry of an API error's "errors" list.
type FieldError struct {
	Resource string `json:"resource,omitempty"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (e FieldError) String() string {
	if e.Message != "" {
		return e.Message
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Resource, e.Field, e.Code} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// APIError is a non-successful GitHub API response.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Error renders the message followed by one line per nested error.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GitHub API error %d", e.Status)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	for _, fe := range e.Errors {
		if s := fe.String(); s != "" {
			b.WriteString("\n  - " + s)
		}
	}
	return b.String()
}

// Unwrap maps well-known nested messages to sentinel errors.
func (e *APIError) Unwrap() error {
	for _, fe := range e.Errors {
		msg := strings.ToLower(fe.Message)
		switch {
		case strings.Contains(msg, "name already exists"):
			return ErrRepositoryExists
		case strings.Contains(msg, "no private repositories available"):
			return ErrPrivateUnavailable
		}
	}
	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
