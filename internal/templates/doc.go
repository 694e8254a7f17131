// Package templates turns a template reference into a local directory.
//
// A reference is one of: an existing local directory, a git repository URL
// (cloned into the custom template cache), or the name of a template in the
// shared cache, which is a clone of the canonical templates repository.
//
// The caches are read and written without locking. Running two resolvers
// against the same cache directories at the same time is not supported.
package templates
