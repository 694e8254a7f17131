package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Terminal is a line-oriented Prompter reading answers from an input stream.
type Terminal struct {
	input  io.Reader
	reader *bufio.Reader
	output io.Writer
	mark   *color.Color
	text   *color.Color
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInput sets the input reader.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) {
		t.input = r
	}
}

// WithOutput sets the writer questions are printed to.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.output = w
	}
}

// NewTerminal creates a Terminal on stdin/stderr unless options say otherwise.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		input:  os.Stdin,
		output: os.Stderr,
		mark:   color.New(color.FgGreen, color.Bold),
		text:   color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.reader = bufio.NewReader(t.input)
	return t
}

// tty returns the input file when it is a terminal.
func (t *Terminal) tty() (*os.File, bool) {
	f, ok := t.input.(*os.File)
	if !ok || !IsTerminal(f) {
		return nil, false
	}
	return f, true
}

// AskText implements Prompter.
func (t *Terminal) AskText(question, defaultValue string) (string, error) {
	suffix := ""
	if defaultValue != "" {
		suffix = fmt.Sprintf(" (%s)", defaultValue)
	}
	t.ask(question + suffix)

	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}

// AskSecret implements Prompter. On a real terminal the reply is not echoed.
func (t *Terminal) AskSecret(question string) (string, error) {
	t.ask(question)

	if f, ok := t.tty(); ok {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.output)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return t.readLine()
}

// AskConfirm implements Prompter. Anything other than y/yes/n/no is asked
// once more; a second bad reply is an error.
func (t *Terminal) AskConfirm(question string, defaultValue bool) (bool, error) {
	hint := "[y/N]"
	if defaultValue {
		hint = "[Y/n]"
	}

	for attempt := 0; attempt < 2; attempt++ {
		t.ask(question + " " + hint)
		line, err := t.readLine()
		if err != nil {
			return false, err
		}
		if v, ok := parseYesNo(line, defaultValue); ok {
			return v, nil
		}
		fmt.Fprintln(t.output, "Please answer 'y' or 'n'.")
	}
	return false, fmt.Errorf("no valid answer to %q", question)
}

func (t *Terminal) ask(question string) {
	fmt.Fprintf(t.output, "%s %s ", t.mark.Sprint("?"), t.text.Sprint(question))
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func parseYesNo(s string, defaultValue bool) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultValue, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}
