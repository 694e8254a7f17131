// Package command runs the external tools the CLI drives (git and npm).
// Runner is the seam used by every package that shells out, so tests can
// substitute a Recorder instead of executing real processes.
package command
