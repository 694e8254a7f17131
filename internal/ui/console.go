package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Console prints formatted messages. Regular output goes to Out, warnings
// and errors to Err.
type Console struct {
	Out io.Writer
	Err io.Writer

	info    *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	trace   *color.Color
}

// NewConsole creates a Console writing to out and errOut. Nil writers default
// to os.Stdout and os.Stderr.
func NewConsole(out, errOut io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Console{
		Out:     out,
		Err:     errOut,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		trace:   color.New(color.FgCyan),
	}
}

// DisableColor turns off ANSI styling for every Console in the process.
func DisableColor() {
	color.NoColor = true
}

// Info prints a progress line.
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintln(c.Out, c.info.Sprintf(format, args...))
}

// Success prints a confirmation line.
func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.Out, c.success.Sprintf(format, args...))
}

// Warn prints a non-fatal problem to the error stream.
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.Err, c.warn.Sprintf("Warning: "+format, args...))
}

// PrintError prints err in bold red. With withStack set, the "%+v" form is
// printed as well, which includes stack traces recorded by pkg/errors.
func (c *Console) PrintError(err error, withStack bool) {
	if err == nil {
		return
	}
	fmt.Fprintln(c.Err, c.fail.Sprint(err.Error()))
	if withStack {
		fmt.Fprintln(c.Err, c.trace.Sprintf("%+v", err))
	}
}
