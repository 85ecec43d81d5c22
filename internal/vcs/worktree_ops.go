package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// AddWorktreeOptions configures `git worktree add`.
type AddWorktreeOptions struct {
	// CreateBranch, when set, passes `-b <CreateBranch>` so a new local
	// branch is created at Base (or HEAD if Base is empty).
	CreateBranch string
	Base         string
	// TrackRemote checks out an existing remote-tracking ref directly
	// (e.g. `origin/feature-x`) rather than creating a new branch.
	TrackRemote bool
}

// AddWorktree runs `git worktree add` for path/branch per opts.
func (r *Repository) AddWorktree(ctx context.Context, path, branch string, opts AddWorktreeOptions) error {
	args := []string{"worktree", "add"}
	switch {
	case opts.CreateBranch != "":
		args = append(args, "-b", opts.CreateBranch, path)
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	case opts.TrackRemote:
		args = append(args, path, branch)
	default:
		args = append(args, path, branch)
	}
	_, err := r.run(ctx, "worktree add", args...)
	return err
}

// RemoveWorktree runs `git worktree remove`, optionally forced.
func (r *Repository) RemoveWorktree(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := r.run(ctx, "worktree remove", args...)
	return err
}

// DeleteBranch deletes a local branch, -d (safe) or -D (force).
func (r *Repository) DeleteBranch(ctx context.Context, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := r.run(ctx, "branch delete", "branch", flag, branch)
	return err
}

// IsBranchMerged reports whether branch is reachable from target.
func (r *Repository) IsBranchMerged(ctx context.Context, branch, target string) (bool, error) {
	out, err := r.run(ctx, "branch --merged", "branch", "--merged", target)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "* "))
		if name == branch {
			return true, nil
		}
	}
	return false, nil
}

// IsDirty reports whether the current worktree has uncommitted changes
// or untracked files.
func (r *Repository) IsDirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status --porcelain", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// HasStagedChanges reports whether the index has any staged changes,
// distinct from IsDirty which also counts unstaged/untracked ones
// (spec §4.H squash's commit-count-vs-staged decision table).
func (r *Repository) HasStagedChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "diff --cached --name-only", "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// StageAll runs `git add -A` (or `-u` for tracked-only) in the current
// worktree.
func (r *Repository) StageAll(ctx context.Context, trackedOnly bool) error {
	flag := "-A"
	if trackedOnly {
		flag = "-u"
	}
	_, err := r.run(ctx, "add", "add", flag)
	return err
}

// Commit creates a commit with message in the current worktree.
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "commit", "-m", message)
	return err
}

// SoftReset resets HEAD to target, keeping the working tree and index.
func (r *Repository) SoftReset(ctx context.Context, target string) error {
	_, err := r.run(ctx, "reset --soft", "reset", "--soft", target)
	return err
}

// Rebase runs `git rebase <target>` in the current worktree.
func (r *Repository) Rebase(ctx context.Context, target string) error {
	_, err := r.run(ctx, "rebase", "rebase", target)
	return err
}

// RebaseState reports the literal first word of the repository's rebase
// state (e.g. "REBASING") or "" if no rebase is in progress, per spec
// §4.H's typed rebase-conflict error. Detection is via the presence of
// rebase-merge/rebase-apply under the worktree's git dir rather than
// matching porcelain status text, which breaks under a non-English
// LANG/LC_ALL.
func (r *Repository) RebaseState(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse --git-dir", "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	gitDir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(r.root, gitDir)
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, statErr := os.Stat(filepath.Join(gitDir, marker)); statErr == nil {
			return "REBASING", nil
		}
	}
	return "", nil
}

// ForwardBranch fast-forwards localBranch's ref to target's current
// commit (used by the merge orchestrator's trunk-pointer update).
func (r *Repository) ForwardBranch(ctx context.Context, localBranch, target string) error {
	_, err := r.run(ctx, "fetch . (branch update)", "fetch", ".", target+":"+localBranch)
	return err
}

// Head returns the current HEAD commit SHA.
func (r *Repository) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse HEAD", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SetConfig sets a single git config key, used for the previous-branch
// record (spec §6, per-repo VCS config key).
func (r *Repository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.run(ctx, "config", "config", key, value)
	return err
}

// GetConfig reads a single git config key, returning "" if unset.
func (r *Repository) GetConfig(ctx context.Context, key string) (string, error) {
	out, err := r.run(ctx, "config --get", "config", "--get", key)
	if err != nil {
		if ce, ok := err.(*CommandError); ok && ce.ExitCode == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// FetchRef fetches a ref spec from a remote into a local ref, used for
// fork-PR/MR checkouts (e.g. `pull/123/head:pr-123`).
func (r *Repository) FetchRef(ctx context.Context, remote, refSpec string) error {
	_, err := r.run(ctx, "fetch", "fetch", remote, refSpec)
	return err
}

// CommonDir returns the repository's common git directory (shared by
// all worktrees), used to root the audit log, CI cache, and diagnostic
// dump (spec §6's persisted-state paths).
func (r *Repository) CommonDir(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse --git-common-dir", "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(string(out))
	if !strings.HasPrefix(dir, "/") {
		// relative to r.root; canonicalize by asking git again with -C root
		abs, absErr := r.run(ctx, "rev-parse --show-toplevel", "rev-parse", "--show-toplevel")
		if absErr == nil {
			dir = strings.TrimSpace(string(abs)) + "/" + dir
		}
	}
	return dir, nil
}
