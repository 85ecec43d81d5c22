package ci

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	wtrexec "github.com/riverhollow/wtr/internal/exec"
)

// ShelloutProvider fetches CI status by shelling out to the gh or glab CLI,
// the default mode, grounded on the teacher's internal/forge which treats
// the PR/CI platform as an external black-box subprocess rather than a
// linked API client.
type ShelloutProvider struct {
	// CLI is "gh" or "glab".
	CLI string
}

// DetectShellout picks gh or glab based on which binary is on PATH,
// preferring whichever the remote host suggests.
func DetectShellout(remoteURL string) *ShelloutProvider {
	cli := "gh"
	if strings.Contains(strings.ToLower(remoteURL), "gitlab") {
		cli = "glab"
	}
	if _, err := exec.LookPath(cli); err != nil {
		alt := "glab"
		if cli == "glab" {
			alt = "gh"
		}
		if _, err := exec.LookPath(alt); err == nil {
			cli = alt
		}
	}
	return &ShelloutProvider{CLI: cli}
}

func (p *ShelloutProvider) Name() string { return "shellout:" + p.CLI }

// Status shells out to `gh pr list` / `glab mr list` for the most recent
// PR/MR (any state) whose head is branch, and reports status "none"
// when no PR/MR exists; there is no branch-only status lookup. Both
// CLIs emit JSON; only a handful of fields are read out of
// it with gjson rather than defining full response structs for output
// that is mostly discarded.
func (p *ShelloutProvider) Status(ctx context.Context, branch, headSHA string) (Status, error) {
	switch p.CLI {
	case "glab":
		return p.glabStatus(ctx, branch, headSHA)
	default:
		return p.ghStatus(ctx, branch, headSHA)
	}
}

func (p *ShelloutProvider) ghStatus(ctx context.Context, branch, headSHA string) (Status, error) {
	out, err := wtrexec.OutputContext(ctx, "", "gh", "pr", "list",
		"--head", branch, "--state", "all", "--json", "number,statusCheckRollup,url", "--limit", "1")
	if err != nil {
		return Status{}, fmt.Errorf("gh pr list: %w", err)
	}

	result := gjson.ParseBytes(out)
	prs := result.Array()
	if len(prs) == 0 {
		return Status{Status: "none", Source: SourceNone, HeadSHA: headSHA, CheckedAt: timeNow()}, nil
	}

	pr := prs[0]
	rollup := pr.Get("statusCheckRollup")
	state := combinedRollupState(rollup)
	return Status{
		Status:    state,
		Source:    SourcePR,
		URL:       pr.Get("url").String(),
		HeadSHA:   headSHA,
		CheckedAt: timeNow(),
	}, nil
}

func (p *ShelloutProvider) glabStatus(ctx context.Context, branch, headSHA string) (Status, error) {
	out, err := wtrexec.OutputContext(ctx, "", "glab", "mr", "list",
		"--source-branch", branch, "--state", "all", "-F", "json", "-P", "1")
	if err != nil {
		return Status{}, fmt.Errorf("glab mr list: %w", err)
	}

	result := gjson.ParseBytes(out)
	mrs := result.Array()
	if len(mrs) == 0 {
		return Status{Status: "none", Source: SourceNone, HeadSHA: headSHA, CheckedAt: timeNow()}, nil
	}

	mr := mrs[0]
	status := mr.Get("head_pipeline.status").String()
	if status == "" {
		status = "unknown"
	}
	return Status{
		Status:    status,
		Source:    SourcePR,
		URL:       mr.Get("web_url").String(),
		HeadSHA:   headSHA,
		CheckedAt: timeNow(),
	}, nil
}

// combinedRollupState reduces gh's per-check statusCheckRollup array to a
// single conclusion: "failing" if any entry's conclusion or state is
// FAILURE, else "pending" if any entry has neither field set or is
// PENDING/IN_PROGRESS, else "passing". An empty rollup is "pending".
func combinedRollupState(rollup gjson.Result) string {
	checks := rollup.Array()
	if len(checks) == 0 {
		return "pending"
	}
	allPassing := true
	for _, c := range checks {
		conclusion := strings.ToUpper(c.Get("conclusion").String())
		state := strings.ToUpper(c.Get("state").String())
		switch {
		case conclusion == "FAILURE" || state == "FAILURE":
			return "failing"
		case conclusion == "" && state == "" || conclusion == "PENDING" || state == "PENDING" || state == "IN_PROGRESS":
			allPassing = false
		}
	}
	if allPassing {
		return "passing"
	}
	return "pending"
}

func timeNow() time.Time { return time.Now() }
