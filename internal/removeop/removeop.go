package removeop

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/riverhollow/wtr/internal/directive"
	wtrexec "github.com/riverhollow/wtr/internal/exec"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/resolve"
	"github.com/riverhollow/wtr/internal/vcs"
)

// DeleteMode selects what happens to the branch after its worktree is
// removed (spec §4.H "Remove").
type DeleteMode int

const (
	// DeleteKeep leaves the branch in place.
	DeleteKeep DeleteMode = iota
	// DeleteSafe deletes the branch only if it is fully merged into Target.
	DeleteSafe
	// DeleteForce deletes the branch unconditionally.
	DeleteForce
)

// IntegrationReason classifies why a branch is (or isn't) considered
// integrated into its target, captured before removal since background
// removal may hold locks that make it unsafe to query afterwards.
type IntegrationReason string

const (
	ReasonNone        IntegrationReason = ""
	ReasonSameCommit  IntegrationReason = "same-commit"
	ReasonFullyMerged IntegrationReason = "fully-merged"
)

// preDelay is prepended to a detached worktree-remove spawn so the
// parent shell's cd has time to win the race against the removal
// (spec §4.H).
const preDelay = time.Second

// Options configures a Remove call.
type Options struct {
	Token        string
	Mode         DeleteMode
	Target       string // branch to evaluate integration against; usually the default branch
	ForceRemove  bool   // pass --force to `git worktree remove` (uncommitted changes present)
	NoBackground bool   // remove the current worktree in the foreground instead of a detached spawn
	PathTemplate string
	HookRun      hooks.RunOptions
}

// Result reports what Remove did, for the caller to print.
type Result struct {
	Branch      string
	Path        string
	Integration IntegrationReason
	BranchKept  bool
}

// Remove resolves opts.Token to a worktree and tears it down per spec
// §4.H "Remove".
func Remove(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, phases hooks.PhaseSet, dir *directive.Record, opts Options) (*Result, error) {
	result, err := resolve.Resolve(ctx, repo, opts.Token, resolve.Remove, opts.PathTemplate)
	if err != nil {
		return nil, err
	}
	if result.Kind != resolve.KindWorktree {
		return nil, fmt.Errorf("no worktree registered for %q; nothing to remove", result.Branch)
	}

	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	defaultBranch, err := repo.DefaultBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine default branch: %w", err)
	}

	isCurrentMain := false
	for _, wt := range worktrees {
		if wt.Path == result.Path {
			isCurrentMain = wt.IsMain(worktrees)
			break
		}
	}
	if isCurrentMain && result.Branch == defaultBranch {
		return nil, fmt.Errorf("refusing to remove the main worktree holding the default branch %q", defaultBranch)
	}

	reason, err := integrationReason(ctx, repo, result.Branch, opts.Target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to determine integration state: %v\n", err)
	}

	current, currErr := repo.CurrentWorktree(ctx)
	wasCurrent := currErr == nil && current.Path == result.Path

	mainWorktreePath := ""
	if len(worktrees) > 0 {
		mainWorktreePath = worktrees[0].Path
	}
	vars := hooks.VarsForWorktree(result.Branch, result.Path, mainWorktreePath, opts.Target)

	if cmds := phases[hooks.PhasePreRemove]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePreRemove, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			return nil, err
		}
	}

	detached := wasCurrent && !opts.NoBackground
	if err := removeWorktree(ctx, repo, engine, result.Path, opts.ForceRemove, detached); err != nil {
		return nil, fmt.Errorf("failed to remove worktree: %w", err)
	}

	branchKept := true
	switch opts.Mode {
	case DeleteKeep:
	case DeleteSafe:
		if reason == ReasonFullyMerged || reason == ReasonSameCommit {
			if err := repo.DeleteBranch(ctx, result.Branch, false); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to delete merged branch %q: %v\n", result.Branch, err)
			} else {
				branchKept = false
			}
		} else {
			fmt.Fprintf(os.Stderr, "branch %q not merged into %q; keeping it (use force delete to remove anyway)\n", result.Branch, opts.Target)
		}
	case DeleteForce:
		if err := repo.DeleteBranch(ctx, result.Branch, true); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to force-delete branch %q: %v\n", result.Branch, err)
		} else {
			branchKept = false
		}
	}

	if cmds := phases[hooks.PhasePostRemove]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePostRemove, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			fmt.Fprintf(os.Stderr, "warning: post-remove hooks failed: %v\n", err)
		}
	}
	if cmds := phases[hooks.PhasePostSwitch]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePostSwitch, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			fmt.Fprintf(os.Stderr, "warning: post-switch hooks failed: %v\n", err)
		}
	}

	if wasCurrent && mainWorktreePath != "" {
		dir.SetCd(mainWorktreePath)
	}

	return &Result{Branch: result.Branch, Path: result.Path, Integration: reason, BranchKept: branchKept}, nil
}

func integrationReason(ctx context.Context, repo *vcs.Repository, branch, target string) (IntegrationReason, error) {
	if target == "" {
		return ReasonNone, nil
	}
	merged, err := repo.IsBranchMerged(ctx, branch, target)
	if err != nil {
		return ReasonNone, err
	}
	if !merged {
		return ReasonNone, nil
	}

	ahead, behind, err := repo.AheadBehind(ctx, branch, target)
	if err == nil && ahead == 0 && behind == 0 {
		return ReasonSameCommit, nil
	}
	return ReasonFullyMerged, nil
}

func removeWorktree(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, path string, force, detached bool) error {
	if !detached {
		return repo.RemoveWorktree(ctx, path, force)
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	spec := wtrexec.Spec{Dir: repo.Root(), Name: "git", Args: args}
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return repo.RemoveWorktree(ctx, path, force)
	}
	defer devNull.Close()
	return engine.Runner.Detached(ctx, spec, devNull, preDelay)
}
