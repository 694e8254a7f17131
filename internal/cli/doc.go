// Package cli defines the Cobra command tree for the imq CLI. Each file in
// this package registers one top-level command with the root command.
// Commands only parse flags and wire collaborators; the provisioning logic
// lives in internal/service.
package cli
