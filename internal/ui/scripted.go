package ui

import (
	"fmt"
	"sync"
)

// Scripted is a Prompter that replays a fixed list of answers in order and
// records every question asked.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	Asked   []string
}

// NewScripted creates a Scripted prompter with the given answers.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Remaining returns how many answers have not been consumed.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Scripted) next(question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, question)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("%w for %q", ErrNoMoreAnswers, question)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

// AskText implements Prompter.
func (s *Scripted) AskText(question, defaultValue string) (string, error) {
	a, err := s.next(question)
	if err != nil {
		return "", err
	}
	if a == "" {
		return defaultValue, nil
	}
	return a, nil
}

// AskSecret implements Prompter.
func (s *Scripted) AskSecret(question string) (string, error) {
	return s.next(question)
}

// AskConfirm implements Prompter.
func (s *Scripted) AskConfirm(question string, defaultValue bool) (bool, error) {
	a, err := s.next(question)
	if err != nil {
		return false, err
	}
	v, ok := parseYesNo(a, defaultValue)
	if !ok {
		return false, fmt.Errorf("scripted answer %q is not yes/no", a)
	}
	return v, nil
}
