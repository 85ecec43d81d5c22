package forge

import (
	"context"
	"fmt"
	"regexp"

	"github.com/riverhollow/wtr/internal/vcs"
)

// forkRefTokenPattern recognizes a worktree token as a fork PR/MR
// reference rather than a branch name: "pr/123", "pr123", "mr/123",
// "mr123", or "#123" all resolve to PR/MR number 123. The forge backing
// the repo's origin (not the token) decides whether that number means a
// GitHub pull request or a GitLab merge request.
var forkRefTokenPattern = regexp.MustCompile(`^(?:pr|mr)/?(\d+)$|^#(\d+)$`)

// ParseForkRefToken reports whether token names a fork PR/MR reference,
// and if so, its number (spec §4.G resolution step 4: "the token parses
// as a fork PR/MR reference").
func ParseForkRefToken(token string) (number int, ok bool) {
	m := forkRefTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// localBranchPrefix names the local branch a fork ref is fetched into,
// keyed by Forge.Name() so a GitHub PR #123 and a GitLab MR #123 never
// collide in the same repo.
var localBranchPrefix = map[string]string{
	"github": "pr",
	"gitlab": "mr",
}

// ResolveForkRef fetches refPath (spec's "ref_path", e.g.
// "pull/123/head" or "merge-requests/123/head") from remote into a
// fresh local branch and returns that branch's name, ready for
// switchop/vcs.AddWorktreeOptions to check out like any other existing
// branch. The remote is resolved by the caller (normally "origin")
// before this runs, matching the original's "resolved during planning,
// before approval prompts" early-failure note.
func ResolveForkRef(ctx context.Context, repo *vcs.Repository, f Forge, remote string, number int) (localBranch string, err error) {
	prefix, ok := localBranchPrefix[f.Name()]
	if !ok {
		return "", fmt.Errorf("forge %q does not support fork-ref checkout", f.Name())
	}
	refPath := f.PRRefPath(number)
	localBranch = fmt.Sprintf("%s-%d", prefix, number)

	// Force-updates the local branch ref: the upstream PR/MR head commonly
	// moves non-fast-forward (rebase, force-push), and a stale local branch
	// from a previous checkout would otherwise reject the fetch.
	refSpec := fmt.Sprintf("+%s:refs/heads/%s", refPath, localBranch)
	if err := repo.FetchRef(ctx, remote, refSpec); err != nil {
		return "", fmt.Errorf("fetch %s from %s: %w", refPath, remote, err)
	}
	return localBranch, nil
}
