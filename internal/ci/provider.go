package ci

import (
	"context"
	"strings"
	"time"
)

// Source distinguishes where a Status came from, per spec §4.K's cache
// entry shape: "status, source (pr|branch|none), stale?, url?, ...".
type Source string

const (
	SourcePR     Source = "pr"
	SourceBranch Source = "branch"
	SourceNone   Source = "none"
)

// Status is one CI status observation for a branch's HEAD.
type Status struct {
	Status    string
	Source    Source
	URL       string
	HeadSHA   string
	CheckedAt time.Time
}

// Provider fetches the current CI status for a branch's HEAD commit.
type Provider interface {
	// Name identifies the backend for logging ("shellout", "github-api",
	// "gitlab-api").
	Name() string

	// Status fetches the combined CI status for branch at headSHA.
	Status(ctx context.Context, branch, headSHA string) (Status, error)
}

// Mode selects between shelling out to gh/glab (the default, matching the
// spec's "third-party PR/CI platform clients are black-box subprocesses"
// framing) and calling the hosting API directly via go-github/gitlab
// client-go ("api" mode).
type Mode string

const (
	ModeShellout Mode = "shellout"
	ModeAPI      Mode = "api"
)

// New builds the Provider for remoteURL according to mode. In shellout
// mode (the default) it auto-detects gh vs glab; in api mode it builds a
// go-github or gitlab client-go backend based on the remote host, using
// token for auth and baseURL for self-hosted GitLab. baseURL is not
// passed to the GitHub backend, which always talks to api.github.com.
func New(mode Mode, remoteURL, token, baseURL string) (Provider, error) {
	owner, repo := ownerRepo(remoteURL)
	isGitLab := strings.Contains(strings.ToLower(remoteURL), "gitlab")

	if mode != ModeAPI {
		return DetectShellout(remoteURL), nil
	}

	if isGitLab {
		projectID := owner
		if repo != "" {
			projectID = owner + "/" + repo
		}
		return NewGitLabProvider(token, baseURL, projectID)
	}
	return NewGitHubProvider(token, owner, repo), nil
}

// ownerRepo splits a remote URL into owner and repo, tolerating the
// ssh/https/scp forms git remotes commonly take.
func ownerRepo(remoteURL string) (owner, repo string) {
	raw := strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")

	switch {
	case strings.HasPrefix(raw, "ssh://"):
		raw = strings.TrimPrefix(raw, "ssh://")
		if idx := strings.Index(raw, "/"); idx != -1 {
			raw = strings.TrimLeft(raw[idx+1:], "/")
		}
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		raw = strings.TrimPrefix(raw, "https://")
		raw = strings.TrimPrefix(raw, "http://")
		if idx := strings.Index(raw, "/"); idx != -1 {
			raw = raw[idx+1:]
		}
	default:
		if idx := strings.Index(raw, ":"); idx != -1 {
			raw = raw[idx+1:]
		}
	}

	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], "/")
}
