package ci

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v82/github"
)

// GitHubProvider fetches CI status via the GitHub API directly, used when
// the user config sets ci.mode = "api" instead of shelling out to gh.
// Grounded on the go-github wiring in the retrieved orc example's
// internal/hosting/github provider.
type GitHubProvider struct {
	client *gogithub.Client
	owner  string
	repo   string
}

// NewGitHubProvider builds a provider for owner/repo, authenticated with
// token (typically from GITHUB_TOKEN / gh's stored credential).
func NewGitHubProvider(token, owner, repo string) *GitHubProvider {
	httpClient := &http.Client{Transport: &bearerTransport{token: token}}
	return &GitHubProvider{
		client: gogithub.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
	}
}

func (p *GitHubProvider) Name() string { return "github-api" }

// Status fetches the combined commit status plus check-run rollup for
// headSHA and reduces them to a single state.
func (p *GitHubProvider) Status(ctx context.Context, branch, headSHA string) (Status, error) {
	combined, _, err := p.client.Repositories.GetCombinedStatus(ctx, p.owner, p.repo, headSHA, nil)
	if err != nil {
		return Status{}, fmt.Errorf("get combined status for %s: %w", headSHA, err)
	}

	checks, _, err := p.client.Checks.ListCheckRunsForRef(ctx, p.owner, p.repo, headSHA, nil)
	if err != nil {
		return Status{}, fmt.Errorf("list check runs for %s: %w", headSHA, err)
	}

	state := combined.GetState()
	url := combined.GetCommitURL()
	for _, cr := range checks.CheckRuns {
		switch cr.GetConclusion() {
		case "failure", "timed_out", "cancelled":
			state = "failure"
		}
		if cr.GetHTMLURL() != "" && url == "" {
			url = cr.GetHTMLURL()
		}
	}

	return Status{
		Status:    normalizeGitHubState(state),
		Source:    SourceBranch,
		URL:       url,
		HeadSHA:   headSHA,
		CheckedAt: time.Now(),
	}, nil
}

func normalizeGitHubState(state string) string {
	switch state {
	case "success":
		return "passing"
	case "failure", "error":
		return "failing"
	case "":
		return "none"
	default:
		return state
	}
}

// bearerTransport attaches a bearer token to every outbound request, the
// same minimal oauth2-less pattern the orc example uses for its
// unauthenticated-library-default go-github client.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	if t.token != "" {
		req2.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req2)
}
