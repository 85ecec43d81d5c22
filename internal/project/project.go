package project

import (
	"context"
	"regexp"
	"strings"

	"github.com/riverhollow/wtr/internal/vcs"
)

// sshScpLike matches the git@host:owner/repo(.git) shorthand.
var sshScpLike = regexp.MustCompile(`^(?:[\w.-]+@)?([\w.-]+):(.+?)/([\w.-]+?)(?:\.git)?/?$`)

// urlLike matches https://host/owner/repo(.git), ssh://host[:port]/owner/repo(.git),
// and git://host/owner/repo(.git).
var urlLike = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://(?:[^@/]+@)?([^/:]+)(?::\d+)?/(.+?)/([\w.-]+?)(?:\.git)?/?$`)

// Identity derives the project identity for repo: the remote's
// host/owner/repo triple when a parseable origin remote exists,
// otherwise repo's absolute root path (spec §3).
func Identity(ctx context.Context, repo *vcs.Repository) string {
	url, err := repo.GetOriginURL(ctx)
	if err == nil && url != "" {
		if key, ok := ParseRemote(url); ok {
			return key
		}
	}
	return repo.Root()
}

// ParseRemote extracts "host/owner/repo" from a git remote URL,
// handling the https://, ssh://, git://, and SCP-like (git@host:path)
// forms. Owner may itself contain slashes (nested GitLab groups); repo
// is always the final path segment.
func ParseRemote(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)

	if m := urlLike.FindStringSubmatch(remote); m != nil {
		return m[1] + "/" + m[2] + "/" + m[3], true
	}
	if m := sshScpLike.FindStringSubmatch(remote); m != nil {
		return m[1] + "/" + m[2] + "/" + m[3], true
	}
	return "", false
}
