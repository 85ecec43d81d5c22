package switchop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/riverhollow/wtr/internal/directive"
	"github.com/riverhollow/wtr/internal/forge"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/resolve"
	"github.com/riverhollow/wtr/internal/vcs"
)

// Options configures a Switch call.
type Options struct {
	Token        string
	Create       bool   // allow creating a brand-new branch/worktree
	Base         string // base ref for a newly created branch
	TrackRemote  bool   // check out an existing remote-tracking ref directly
	Clobber      bool   // rename a pre-existing directory at the expected path instead of failing
	PathTemplate string
	LogDir       string
	HookRun      hooks.RunOptions

	// Forge and Remote enable fork-ref tokens (spec §4.G step 4, §3's
	// ForkRef creation method): when set and Token parses as
	// forge.ParseForkRefToken, Switch fetches the PR/MR ref from Remote
	// before falling through to ordinary branch resolution. Remote
	// defaults to "origin" when empty.
	Forge  forge.Forge
	Remote string
}

// Switch resolves opts.Token and either switches directly to an
// existing worktree or creates one, firing the appropriate hooks and
// emitting a cd directive on dir (spec §4.H "Switch").
func Switch(ctx context.Context, repo *vcs.Repository, engine *hooks.Engine, phases hooks.PhaseSet, dir *directive.Record, opts Options) error {
	token := opts.Token
	if opts.Forge != nil {
		if number, ok := forge.ParseForkRefToken(token); ok {
			remote := opts.Remote
			if remote == "" {
				remote = "origin"
			}
			localBranch, err := forge.ResolveForkRef(ctx, repo, opts.Forge, remote, number)
			if err != nil {
				return fmt.Errorf("resolve fork ref %q: %w", opts.Token, err)
			}
			token = localBranch
		}
	}

	result, err := resolve.Resolve(ctx, repo, token, resolve.CreateOrSwitch, opts.PathTemplate)
	if err != nil {
		return err
	}

	current, currErr := repo.CurrentWorktree(ctx)
	var previousBranch string
	if currErr == nil && !current.Detached {
		previousBranch = current.Branch
	}

	if result.Kind == resolve.KindWorktree {
		if previousBranch != "" && previousBranch != result.Branch {
			if err := repo.SetConfig(ctx, resolve.PreviousBranchConfigKey, previousBranch); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to record previous branch: %v\n", err)
			}
		}
		dir.SetCd(result.Path)
		return nil
	}

	if !result.BranchExists && !opts.Create && !opts.TrackRemote {
		return fmt.Errorf("branch %q does not exist; rerun with --create to make a new branch", result.Branch)
	}

	expectedPath, err := resolve.ExpectedPath(ctx, repo, result.Branch, opts.PathTemplate)
	if err != nil {
		return err
	}

	if err := prepareTargetDir(expectedPath, opts.Clobber); err != nil {
		return err
	}

	addOpts := vcs.AddWorktreeOptions{Base: opts.Base, TrackRemote: opts.TrackRemote}
	if opts.Create && !result.BranchExists {
		addOpts.CreateBranch = result.Branch
	}
	if err := repo.AddWorktree(ctx, expectedPath, result.Branch, addOpts); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	fmt.Printf("created worktree for %s at %s\n", result.Branch, expectedPath)

	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list worktrees after create: %w", err)
	}
	var main vcs.Worktree
	if len(worktrees) > 0 {
		main = worktrees[0]
	}

	vars := hooks.VarsForWorktree(result.Branch, expectedPath, main.Path, "")

	if cmds := phases[hooks.PhasePostCreate]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePostCreate, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			return err
		}
	}
	if cmds := phases[hooks.PhasePostStart]; len(cmds) > 0 {
		if err := engine.RunPhase(ctx, hooks.PhasePostStart, cmds, vars, opts.HookRun); err != nil && !hooks.IsDeclined(err) {
			fmt.Fprintf(os.Stderr, "warning: post-start hooks failed: %v\n", err)
		}
	}

	if previousBranch != "" && previousBranch != result.Branch {
		if err := repo.SetConfig(ctx, resolve.PreviousBranchConfigKey, previousBranch); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record previous branch: %v\n", err)
		}
	}

	dir.SetCd(expectedPath)
	return nil
}

// prepareTargetDir backs up a pre-existing directory at path when
// clobber is requested, or fails if one exists and clobber is false.
func prepareTargetDir(path string, clobber bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	_ = info

	if !clobber {
		return fmt.Errorf("path %s already exists; rerun with --clobber to back it up and continue", path)
	}

	suffix := time.Now().Format("20060102-150405")
	backup := backupPath(path, suffix)
	if _, err := os.Stat(backup); err == nil {
		return fmt.Errorf("backup path %s already exists", backup)
	}
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("failed to back up existing directory: %w", err)
	}
	fmt.Printf("moved existing directory to %s\n", backup)
	return nil
}

func backupPath(path, suffix string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Sprintf("%s.bak.%s", path, suffix)
	}
	base := path[:len(path)-len(ext)]
	return fmt.Sprintf("%s%s.bak.%s", base, ext, suffix)
}
