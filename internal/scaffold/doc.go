// Package scaffold materializes a template into a service directory: it
// copies the template tree, substitutes %TAG placeholders in every file and
// applies the post-processing steps of the create pipeline (LICENSE file,
// service source rename, removal of Docker artifacts).
//
// Placeholder substitution is deliberately plain text replacement, not a
// template engine: "%NAME" is replaced wherever it occurs.
package scaffold
