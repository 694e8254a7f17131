// Package github creates the remote repository for a new service through the
// GitHub REST API, authenticating with a personal access token.
package github
