package mergeop

import (
	"context"
	"fmt"
	"os"

	"github.com/riverhollow/wtr/internal/directive"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/removeop"
	"github.com/riverhollow/wtr/internal/squashmsg"
	"github.com/riverhollow/wtr/internal/template"
	"github.com/riverhollow/wtr/internal/vcs"
)

// Strategy selects how the current branch is integrated into the
// target (spec §4.H "Merge").
type Strategy int

const (
	Squash Strategy = iota
	Rebase
)

// RebaseConflictError is raised when a rebase leaves the worktree in a
// REBASING state the caller must resolve by hand.
type RebaseConflictError struct {
	Target string
}

func (e *RebaseConflictError) Error() string {
	return fmt.Sprintf("rebase onto %q stopped with conflicts; resolve them and run `git rebase --continue`, or `git rebase --abort`", e.Target)
}

// Options configures a Merge call.
type Options struct {
	Target               string // branch to integrate into; defaults to the repo's default branch
	Strategy             Strategy
	TrackedOnly          bool   // stage with `add -u` instead of `add -A`
	SquashMessageCommand string // shell command to synthesize the squash message; "" uses the deterministic fallback
	Remove               bool   // tear down the feature worktree after a successful integration
	RemoveMode           removeop.DeleteMode
	PathTemplate         string
	HookRun              hooks.RunOptions
}

// Result reports what Merge did, for the caller to print.
type Result struct {
	AlreadyIntegrated bool
	CommitSHA         string // short SHA of the synthesized squash commit, empty for rebase or already-integrated
	Removed           bool
}

// Merge integrates the current worktree's branch into opts.Target (spec
// §4.H "Merge").
func Merge(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, phases hooks.PhaseSet, dir *directive.Record, opts Options) (*Result, error) {
	current, err := repo.CurrentWorktree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine current worktree: %w", err)
	}
	if current.Detached {
		return nil, fmt.Errorf("cannot merge from a detached HEAD")
	}

	defaultBranch, err := repo.DefaultBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine default branch: %w", err)
	}

	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	if current.IsMain(worktrees) || current.Branch == defaultBranch {
		return nil, fmt.Errorf("cannot merge from the main or default-branch worktree; run this from the feature worktree instead")
	}

	target := opts.Target
	if target == "" {
		target = defaultBranch
	}

	approvalPhases := map[hooks.Phase][]hooks.Command{
		hooks.PhasePreMerge:  phases[hooks.PhasePreMerge],
		hooks.PhasePostMerge: phases[hooks.PhasePostMerge],
	}
	if opts.Strategy != Rebase {
		approvalPhases[hooks.PhasePreCommit] = phases[hooks.PhasePreCommit]
	}
	if opts.Remove {
		approvalPhases[hooks.PhasePreRemove] = phases[hooks.PhasePreRemove]
		approvalPhases[hooks.PhasePostRemove] = phases[hooks.PhasePostRemove]
		approvalPhases[hooks.PhasePostSwitch] = phases[hooks.PhasePostSwitch]
	}
	var mainPath string
	if len(worktrees) > 0 {
		mainPath = worktrees[0].Path
	}
	vars := hooks.VarsForWorktree(current.Branch, current.Path, mainPath, target)
	if err := engine.ApproveAtGate(approvalPhases, vars, opts.HookRun); err != nil {
		return nil, err
	}

	integrated, err := repo.IsBranchMerged(ctx, current.Branch, target)
	if err != nil {
		return nil, fmt.Errorf("failed to check integration state: %w", err)
	}

	result := &Result{}

	if integrated {
		result.AlreadyIntegrated = true
		fmt.Printf("%s is already integrated into %s\n", current.Branch, target)
	} else {
		sha, err := integrate(ctx, repo, engine, phases, vars, current.Branch, target, opts)
		if err != nil {
			return nil, err
		}
		result.CommitSHA = sha

		if cmds := phases[hooks.PhasePreMerge]; len(cmds) > 0 {
			if err := engine.RunPhase(ctx, hooks.PhasePreMerge, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
				return nil, err
			}
		}
		if err := repo.ForwardBranch(ctx, target, current.Branch); err != nil {
			return nil, fmt.Errorf("failed to fast-forward %s: %w", target, err)
		}
		if cmds := phases[hooks.PhasePostMerge]; len(cmds) > 0 {
			if err := engine.RunPhase(ctx, hooks.PhasePostMerge, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
				fmt.Fprintf(os.Stderr, "warning: post-merge hooks failed: %v\n", err)
			}
		}
	}

	if opts.Remove {
		removeOpts := removeop.Options{
			Token:        current.Branch,
			Mode:         opts.RemoveMode,
			Target:       target,
			PathTemplate: opts.PathTemplate,
			HookRun:      opts.HookRun,
		}
		if _, err := removeop.Remove(ctx, repo, engine, phases, dir, removeOpts); err != nil {
			return result, fmt.Errorf("merge succeeded but removing the worktree failed: %w", err)
		}
		result.Removed = true
	}

	return result, nil
}

// integrate runs the configured strategy and returns the short SHA of
// any synthesized squash commit ("" for rebase).
func integrate(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, phases hooks.PhaseSet, vars template.Vars, branch, target string, opts Options) (string, error) {
	switch opts.Strategy {
	case Rebase:
		return "", runRebase(ctx, repo, target)
	default:
		return runSquash(ctx, repo, engine, phases, vars, branch, target, opts)
	}
}

func runRebase(ctx context.Context, repo *vcs.Repository, target string) error {
	if err := repo.Rebase(ctx, target); err != nil {
		state, stateErr := repo.RebaseState(ctx)
		if stateErr == nil && state == "REBASING" {
			return &RebaseConflictError{Target: target}
		}
		return fmt.Errorf("rebase onto %s failed: %w", target, err)
	}
	state, err := repo.RebaseState(ctx)
	if err == nil && state == "REBASING" {
		return &RebaseConflictError{Target: target}
	}
	return nil
}

// runSquash implements spec §4.H's squash decision table: stage, run
// pre-commit, then decide based on commit count since the merge base
// and whether there are staged changes. Grounded on
// original_source/src/commands/dev.rs's handle_dev_squash.
func runSquash(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, phases hooks.PhaseSet, vars template.Vars, branch, target string, opts Options) (string, error) {
	if err := repo.StageAll(ctx, opts.TrackedOnly); err != nil {
		return "", fmt.Errorf("failed to stage changes: %w", err)
	}

	if cmds := phases[hooks.PhasePreCommit]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePreCommit, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			return "", err
		}
	}

	mergeBase, ok, err := repo.MergeBase(ctx, target, "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to compute merge base with %s: %w", target, err)
	}
	if !ok {
		return "", fmt.Errorf("%s and %s share no common history", branch, target)
	}

	commitCount, err := repo.CountCommits(ctx, mergeBase+"..HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to count commits since merge base: %w", err)
	}
	hasStaged, err := repo.HasStagedChanges(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check staged changes: %w", err)
	}

	switch {
	case commitCount == 0 && !hasStaged:
		fmt.Println("nothing to squash: already at the merge base")
		return "", nil
	case commitCount == 0 && hasStaged:
		msg, err := squashmsg.Synthesize(ctx, engine.Runner, opts.SquashMessageCommand, squashmsg.Vars{Branch: branch, Target: target, Repo: vars.Repo})
		if err != nil {
			return "", fmt.Errorf("failed to synthesize squash message: %w", err)
		}
		if err := repo.Commit(ctx, msg); err != nil {
			return "", fmt.Errorf("failed to commit staged changes: %w", err)
		}
		return shortSHA(ctx, repo)
	case commitCount == 1 && !hasStaged:
		fmt.Printf("only 1 commit since %s; nothing to squash\n", target)
		return "", nil
	}

	subjects, err := repo.CommitSubjects(ctx, mergeBase+"..HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read commit subjects: %w", err)
	}

	msg, err := squashmsg.Synthesize(ctx, engine.Runner, opts.SquashMessageCommand, squashmsg.Vars{
		Branch:   branch,
		Target:   target,
		Repo:     vars.Repo,
		Subjects: subjects,
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize squash message: %w", err)
	}

	if err := repo.SoftReset(ctx, mergeBase); err != nil {
		return "", fmt.Errorf("failed to reset to merge base: %w", err)
	}
	stillStaged, err := repo.HasStagedChanges(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check staged changes after reset: %w", err)
	}
	if !stillStaged {
		return "", fmt.Errorf("no changes to commit after squashing %d commits: the commits resulted in no net changes against %s", commitCount, target)
	}
	if err := repo.Commit(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to create squash commit: %w", err)
	}
	sha, err := shortSHA(ctx, repo)
	if err != nil {
		return "", err
	}
	fmt.Printf("squashed %d commits into 1 @ %s\n", commitCount, sha)
	return sha, nil
}

func shortSHA(ctx context.Context, repo *vcs.Repository) (string, error) {
	sha, err := repo.Head(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if len(sha) > 12 {
		return sha[:12], nil
	}
	return sha, nil
}
