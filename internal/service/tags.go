package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/license"
	"github.com/imqueue/imq-cli/internal/names"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/validate"
)

// DefaultVersion is used when no version is requested.
const DefaultVersion = "1.0.0-0"

// Service is everything derived about the new service before any file is
// written.
type Service struct {
	Name        string // dash-cased
	ClassName   string
	Version     string
	Description string
	Namespace   string // GitHub namespace, empty when unknown
	RepoURL     string // ssh clone URL
	Homepage    string
	BugsURL     string
	Author      string
	Email       string
	License     *license.Text
	Tags        TagSet
}

// Owner and Repo of the GitHub repository.
func (s *Service) Owner() string { return s.Namespace }
func (s *Service) Repo() string  { return s.Name }

// TagBuilder derives a Service from a Request, falling back to stored
// defaults and asking the user once for anything still missing or invalid.
type TagBuilder struct {
	Defaults config.Defaults
	Prompter ui.Prompter
	Now      func() time.Time
}

// Build resolves every field and the base tag set.
func (b *TagBuilder) Build(req Request) (*Service, error) {
	name := names.Dashed(req.Name)
	if strings.Trim(name, "-") == "" {
		return nil, validate.Errorf("service name", req.Name, "name must contain letters or digits")
	}

	version := firstNonEmpty(req.Version)
	if version == "" {
		version = DefaultVersion
	} else if !validate.IsVersion(version) {
		return nil, validate.Errorf("version", version, "expected a semantic version such as 1.0.0")
	}

	svc := &Service{
		Name:        name,
		ClassName:   names.ClassName(name),
		Version:     version,
		Description: firstNonEmpty(req.Description, name+" - IMQ based service"),
	}

	var err error
	if svc.Namespace, err = b.namespace(req); err != nil {
		return nil, err
	}
	if svc.Namespace != "" {
		host := branding.GitHubHost()
		svc.RepoURL = fmt.Sprintf("git@%s:%s/%s.git", host, svc.Namespace, name)
		svc.Homepage = fmt.Sprintf("https://%s/%s/%s", host, svc.Namespace, name)
		svc.BugsURL = svc.Homepage + "/issues"
	}
	svc.Homepage = firstNonEmpty(req.Homepage, svc.Homepage)
	svc.BugsURL = firstNonEmpty(req.BugsURL, svc.BugsURL)

	if svc.Author, err = b.author(req); err != nil {
		return nil, err
	}
	if svc.Email, err = b.email(req); err != nil {
		return nil, err
	}

	year := b.now().Year()
	if svc.License, err = b.license(req, license.Vars{
		Year:       year,
		FullName:   svc.Author,
		Email:      svc.Email,
		Project:    name,
		ProjectURL: svc.Homepage,
	}); err != nil {
		return nil, err
	}

	svc.Tags = NewTagSet(
		TagServiceName, svc.Name,
		TagServiceClassName, svc.ClassName,
		TagServiceVersion, svc.Version,
		TagServiceDescription, svc.Description,
		TagServiceRepo, svc.Homepage,
		TagServiceGitURL, svc.RepoURL,
		TagServiceHomepage, svc.Homepage,
		TagServiceBugs, svc.BugsURL,
		TagAuthorName, svc.Author,
		TagAuthorEmail, svc.Email,
		TagLicenseID, svc.License.ID,
		TagLicenseName, svc.License.Name,
		TagLicenseHeader, svc.License.Header,
		TagLicenseText, svc.License.Body,
		TagYear, strconv.Itoa(year),
	)
	return svc, nil
}

func (b *TagBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// namespace is only asked for when a repository is going to be created;
// without git the URLs are simply left empty.
func (b *TagBuilder) namespace(req Request) (string, error) {
	ns := firstNonEmpty(req.GitHubNamespace, b.Defaults.GitHubNamespace())
	if ns != "" && validate.IsNamespace(ns) {
		return ns, nil
	}
	if !req.useGit(b.Defaults) {
		if ns != "" {
			return "", validate.Errorf("github namespace", ns, "only letters, digits, dashes and underscores are allowed")
		}
		return "", nil
	}

	answer, err := b.Prompter.AskText("GitHub namespace (user or organization):", "")
	if err != nil {
		return "", err
	}
	if !validate.IsNamespace(answer) {
		return "", validate.Errorf("github namespace", answer, "only letters, digits, dashes and underscores are allowed")
	}
	return answer, nil
}

func (b *TagBuilder) author(req Request) (string, error) {
	if a := firstNonEmpty(req.Author, b.Defaults.Author); a != "" {
		return a, nil
	}
	answer, err := b.Prompter.AskText("Author's full name:", "")
	if err != nil {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return "", fmt.Errorf("author name: %w", ui.ErrEmptyAnswer)
	}
	return answer, nil
}

func (b *TagBuilder) email(req Request) (string, error) {
	if e := firstNonEmpty(req.Email, b.Defaults.Email); validate.IsEmail(e) {
		return e, nil
	}
	answer, err := b.Prompter.AskText("Author's email:", "")
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if !validate.IsEmail(answer) {
		return "", validate.Errorf("email", answer, "expected an email address")
	}
	return answer, nil
}

// license defaults to UNLICENSED. An unknown identifier is asked for once,
// listing the known ones.
func (b *TagBuilder) license(req Request, vars license.Vars) (*license.Text, error) {
	id := firstNonEmpty(req.License, b.Defaults.License, license.Unlicensed)
	if text, err := license.Resolve(id, vars); err == nil {
		return text, nil
	}

	question := fmt.Sprintf("License %q is unknown. Choose one of: %s\nLicense:",
		id, strings.Join(license.Suggestions(), ", "))
	answer, err := b.Prompter.AskText(question, license.Unlicensed)
	if err != nil {
		return nil, err
	}
	text, err := license.Resolve(answer, vars)
	if err != nil {
		return nil, validate.Errorf("license", answer, "unknown license")
	}
	return text, nil
}
