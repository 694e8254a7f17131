// Package ui holds the user-facing side of the CLI: a colored Console for
// progress, warnings and errors, and the Prompter capability used by the
// provisioning pipeline to ask for missing values. Terminal is the
// interactive Prompter; Scripted replays canned answers for tests and
// non-interactive runs.
package ui
