// Package names converts service names between the dash-cased form used for
// packages, repositories and images ("my-service") and the PascalCase form
// used for generated source identifiers ("MyService").
package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	nonAllowed = regexp.MustCompile(`(?i)[^-a-z0-9]`)
	capital    = regexp.MustCompile(`[A-Z]`)
	dashRun    = regexp.MustCompile(`-{2,}`)
	splitter   = regexp.MustCompile(`(?i)[^a-z0-9]`)
)

// Dashed transforms "CamelCase" into "camel-case". Characters outside
// [-A-Za-z0-9] become dashes, dash runs collapse, and a name that starts with
// anything but an ASCII letter gets exactly one leading dash.
func Dashed(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	d := nonAllowed.ReplaceAllString(name, "-")
	d = capital.ReplaceAllStringFunc(d, func(m string) string {
		return "-" + strings.ToLower(m)
	})
	d = dashRun.ReplaceAllString(d, "-")
	d = strings.TrimPrefix(d, "-")

	if !startsWithLetter(name) {
		d = "-" + d
	}
	return d
}

// ClassName transforms a dashed (or otherwise separated) name into
// PascalCase: "camel-case" → "CamelCase", "camel_case/string" →
// "CamelCaseString". A first character that is not an ASCII letter is kept
// as a prefix, so "1service" becomes "11service".
func ClassName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	var sb strings.Builder
	if !startsWithLetter(name) {
		r, _ := utf8.DecodeRuneInString(name)
		sb.WriteRune(r)
	}
	for _, part := range splitter.Split(name, -1) {
		sb.WriteString(upperFirst(part))
	}
	return sb.String()
}

func startsWithLetter(s string) bool {
	c := s[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
