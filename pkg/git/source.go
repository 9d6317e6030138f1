// Package git acquires skill content from GitHub repositories. It resolves
// source strings into clone coordinates, drives a VCS client through a
// depth-1 sparse checkout of a single subdirectory, and copies that
// subdirectory into the skill store.
package git

import (
	"regexp"
	"strings"
)

// Source is a structured reference to a directory inside a GitHub repository.
type Source struct {
	URL    string // normalized clone URL, https://github.com/<owner>/<repo>.git
	Branch string // empty when the URL carries no /tree/ or /blob/ segment
	Path   string // subdirectory inside the repository, no trailing slash
}

// HasSubpath reports whether the reference points below the repository root.
func (s *Source) HasSubpath() bool {
	return s != nil && s.Path != ""
}

var githubURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)(?:/(?:tree|blob)/([^/]+)/(.+))?$`)

// IsGitReference reports whether source should be fetched with git rather
// than read from the local filesystem.
func IsGitReference(source string) bool {
	s := strings.TrimSpace(source)
	return strings.HasPrefix(s, "git@") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ParseGitHubURL parses GitHub web URLs of the form
// github.com/<owner>/<repo>[/tree|blob/<branch>/<subpath>]. Any other shape
// returns nil, even when IsGitReference is true for it.
func ParseGitHubURL(source string) *Source {
	m := githubURLPattern.FindStringSubmatch(strings.TrimSpace(source))
	if m == nil {
		return nil
	}

	repo := strings.TrimSuffix(m[2], ".git")
	if repo == "" {
		return nil
	}

	return &Source{
		URL:    "https://github.com/" + m[1] + "/" + repo + ".git",
		Branch: m[3],
		Path:   strings.TrimRight(m[4], "/"),
	}
}

// LastSegment returns the final path segment of a source string with
// trailing slashes and a .git suffix removed. For a GitHub subdirectory URL
// this is the skill directory name; for a bare repository URL it is the
// repository name.
func LastSegment(source string) string {
	s := strings.TrimSpace(source)
	if ref := ParseGitHubURL(s); ref.HasSubpath() {
		s = ref.Path
	}

	s = strings.TrimRight(s, "/")
	if idx := strings.LastIndexAny(s, "/:"); idx != -1 {
		s = s[idx+1:]
	}
	return strings.TrimSuffix(s, ".git")
}
