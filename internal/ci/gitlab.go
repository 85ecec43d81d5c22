package ci

import (
	"context"
	"fmt"
	"time"

	gogitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabProvider fetches pipeline status via the GitLab API directly for
// ci.mode = "api", grounded on the retrieved orc example's
// internal/hosting/gitlab provider (Pipelines.ListProjectPipelines +
// Jobs.ListPipelineJobs against the latest pipeline for a ref).
type GitLabProvider struct {
	client    *gogitlab.Client
	projectID string
}

// NewGitLabProvider builds a provider for the "owner/repo" projectID,
// authenticated with token. baseURL is empty for gitlab.com.
func NewGitLabProvider(token, baseURL, projectID string) (*GitLabProvider, error) {
	var client *gogitlab.Client
	var err error
	if baseURL != "" {
		client, err = gogitlab.NewClient(token, gogitlab.WithBaseURL(baseURL))
	} else {
		client, err = gogitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}
	return &GitLabProvider{client: client, projectID: projectID}, nil
}

func (p *GitLabProvider) Name() string { return "gitlab-api" }

// Status fetches the most recent pipeline for branch and reduces its
// state to the same vocabulary the shellout and GitHub backends use.
func (p *GitLabProvider) Status(ctx context.Context, branch, headSHA string) (Status, error) {
	pipelines, _, err := p.client.Pipelines.ListProjectPipelines(p.projectID, &gogitlab.ListProjectPipelinesOptions{
		Ref:         gogitlab.Ptr(branch),
		ListOptions: gogitlab.ListOptions{PerPage: 1},
	}, gogitlab.WithContext(ctx))
	if err != nil {
		return Status{}, fmt.Errorf("list pipelines for %q: %w", branch, err)
	}

	if len(pipelines) == 0 {
		return Status{Status: "none", Source: SourceNone, HeadSHA: headSHA, CheckedAt: time.Now()}, nil
	}

	latest := pipelines[0]
	return Status{
		Status:    normalizeGitLabState(latest.Status),
		Source:    SourceBranch,
		URL:       latest.WebURL,
		HeadSHA:   headSHA,
		CheckedAt: time.Now(),
	}, nil
}

func normalizeGitLabState(status string) string {
	switch status {
	case "success":
		return "passing"
	case "failed", "canceled":
		return "failing"
	case "running", "pending", "created":
		return "pending"
	default:
		return status
	}
}
