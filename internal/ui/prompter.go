package ui

import "errors"

// ErrEmptyAnswer is returned by callers when a required prompt was answered
// with nothing.
var ErrEmptyAnswer = errors.New("empty answer")

// ErrNoMoreAnswers is returned by Scripted once its answers are exhausted.
var ErrNoMoreAnswers = errors.New("no more scripted answers")

// Prompter asks the user for values the pipeline could not find elsewhere.
type Prompter interface {
	// AskText asks a free-form question. An empty reply yields defaultValue.
	AskText(question, defaultValue string) (string, error)
	// AskSecret asks a question without echoing the reply when possible.
	AskSecret(question string) (string, error)
	// AskConfirm asks a yes/no question. An empty reply yields defaultValue.
	AskConfirm(question string, defaultValue bool) (bool, error)
}
