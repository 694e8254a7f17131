// Package license resolves license identifiers against an embedded license
// database and renders header and body texts for a project.
package license

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// Unlicensed is the identifier for proprietary, all-rights-reserved code.
// It is never looked up in the database.
const Unlicensed = "UNLICENSED"

//go:embed licenses.yaml
var rawLicenses []byte

var (
	loadOnce sync.Once
	database []*License
	loadErr  error
)

// License is a database entry. Header and Body carry placeholders that
// Render substitutes.
type License struct {
	Key    string `yaml:"key"`
	SPDXID string `yaml:"spdx_id"`
	Name   string `yaml:"name"`
	Header string `yaml:"header"`
	Body   string `yaml:"body"`
}

// Vars are the project values substituted into a license text.
type Vars struct {
	Year       int
	FullName   string
	Email      string
	Project    string
	ProjectURL string
}

// Text is a rendered license.
type Text struct {
	ID     string
	Name   string
	Header string
	Body   string
}

func load() ([]*License, error) {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(rawLicenses, &database); err != nil {
			loadErr = fmt.Errorf("parsing license database: %w", err)
		}
	})
	return database, loadErr
}

// All returns every license in database order.
func All() []*License {
	db, _ := load()
	return db
}

// Find looks a license up by id or name. Exact key, lowercase key or SPDX id
// prefix are tried first over the whole database, then display name prefix.
// Matching is case-insensitive and the query is taken literally. Returns nil
// when nothing matches.
func Find(name string) *License {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	db, err := load()
	if err != nil {
		return nil
	}

	for _, l := range db {
		if name == l.Key || lower == l.Key || hasPrefixFold(l.SPDXID, lower) {
			return l
		}
	}
	for _, l := range db {
		if hasPrefixFold(l.Name, lower) {
			return l
		}
	}
	return nil
}

// Resolve returns the rendered text for the given identifier. The
// Unlicensed identifier yields a generated private copyright notice.
func Resolve(id string, vars Vars) (*Text, error) {
	if strings.EqualFold(strings.TrimSpace(id), Unlicensed) {
		return Render(unlicensed(), vars), nil
	}
	l := Find(id)
	if l == nil {
		return nil, fmt.Errorf("license %q not found", id)
	}
	return Render(l, vars), nil
}

// Render substitutes project values into the license header and body.
func Render(l *License, vars Vars) *Text {
	r := strings.NewReplacer(
		"[year]", fmt.Sprint(vars.Year),
		"[fullname]", vars.FullName,
		"[email]", vars.Email,
		"[project]", vars.Project,
		"[project_url]", vars.ProjectURL,
	)
	return &Text{
		ID:     l.SPDXID,
		Name:   l.Name,
		Header: r.Replace(l.Header),
		Body:   r.Replace(l.Body),
	}
}

// Suggestions lists "SPDX (Name)" for every known license.
func Suggestions() []string {
	db := All()
	out := make([]string, 0, len(db)+1)
	for _, l := range db {
		out = append(out, fmt.Sprintf("%s (%s)", l.SPDXID, l.Name))
	}
	return append(out, Unlicensed)
}

func unlicensed() *License {
	notice := "Copyright (c) [year] [fullname] <[email]>. All rights reserved.\n\n" +
		"This file is part of [project] and is proprietary and confidential.\n" +
		"Unauthorized copying of this file, via any medium, is strictly prohibited.\n"
	return &License{
		Key:    strings.ToLower(Unlicensed),
		SPDXID: Unlicensed,
		Name:   Unlicensed,
		Header: notice,
		Body:   notice,
	}
}

func hasPrefixFold(s, lowerPrefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), lowerPrefix)
}
