// Package updater tells the user when a newer imq release is published. The
// latest GitHub release is checked at most once a day; the result is cached
// on disk and powers a non-blocking startup banner.
package updater
