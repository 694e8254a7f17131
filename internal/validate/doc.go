// Package validate holds the syntax checks applied to user input before it is
// accepted: email addresses, GitHub/Docker namespaces, GitHub tokens and
// semantic versions. Predicates never fail; they only return false.
//
// Request validates a whole struct once at the CLI boundary using
// go-playground/validator tags backed by the same predicates.
package validate
