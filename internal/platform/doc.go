// Package platform provides cross-platform filesystem helpers: permission
// management for secret-bearing files and path identity checks used to guard
// destructive operations against the working directory.
package platform
