// Package travis is a small client for the Travis CI API: it exchanges a
// GitHub token for a Travis token, fetches a repository's public key to
// encrypt build secrets, and turns builds on for a freshly created
// repository (account sync followed by hook activation).
package travis
