package github

import (
	"fmt"
	"regexp"
	"strings"
)

var repoURLPattern = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/?#]+)`)

// RepoRef names a repository on GitHub.
type RepoRef struct {
	Owner string
	Repo  string
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRepoURL extracts owner and repository from a GitHub URL. It accepts
// https and ssh forms, a trailing .git and deeper paths such as /tree/main.
// A bare "owner/repo" is accepted too.
func ParseRepoURL(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, ErrInvalidURL
	}

	if m := repoURLPattern.FindStringSubmatch(raw); m != nil {
		return newRepoRef(m[1], m[2], raw)
	}

	if !strings.Contains(raw, ":") && strings.Count(raw, "/") == 1 {
		parts := strings.SplitN(raw, "/", 2)
		return newRepoRef(parts[0], parts[1], raw)
	}

	return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
}

func newRepoRef(owner, repo, raw string) (RepoRef, error) {
	repo = strings.TrimSuffix(repo, ".git")
	if !validName(owner) || !validName(repo) {
		return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return RepoRef{Owner: owner, Repo: repo}, nil
}

// validName reports whether s can be a GitHub owner or repository name:
// ASCII letters, digits, dots, underscores and hyphens, and never "." or "..".
func validName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-'
}
