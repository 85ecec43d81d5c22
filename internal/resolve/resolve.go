package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riverhollow/wtr/internal/template"
	"github.com/riverhollow/wtr/internal/vcs"
)

// Mode selects how unregistered branches and path occupancy are treated
// (spec §4.G).
type Mode int

const (
	// CreateOrSwitch is the mode used by `wtr switch`: an occupied
	// expected path for an unregistered branch is an error.
	CreateOrSwitch Mode = iota
	// Remove is the mode used by `wtr remove`: path occupancy is
	// irrelevant since nothing will be created.
	Remove
)

// Kind distinguishes the two successful resolution outcomes.
type Kind int

const (
	// KindWorktree means the branch has a worktree registered.
	KindWorktree Kind = iota
	// KindBranchOnly means the branch exists (or was requested) but has
	// no worktree registered yet.
	KindBranchOnly
)

// Result is a resolved token (spec §4.G resolution steps 1-4).
type Result struct {
	Kind         Kind
	Branch       string
	Path         string // set only when Kind == KindWorktree
	BranchExists bool   // false means token names a brand-new branch
}

// PathOccupiedError is returned when CreateOrSwitch resolution finds the
// expected path already claimed by a different branch's worktree.
type PathOccupiedError struct {
	Branch   string
	Path     string
	Occupant string
}

func (e *PathOccupiedError) Error() string {
	return fmt.Sprintf("expected path %s for branch %q is already a worktree for branch %q", e.Path, e.Branch, e.Occupant)
}

// PreviousBranchConfigKey is the per-repo VCS config key the "-" token
// reads and the switch orchestrator writes on every successful switch
// away from a branch.
const PreviousBranchConfigKey = "wtr.previous-branch"

// Resolve resolves token against repo under mode, per spec §4.G.
// pathTemplate is the configured `worktree-path` template string (spec
// §6), used only to compute an expected path for unregistered branches.
func Resolve(ctx context.Context, repo *vcs.Repository, token string, mode Mode, pathTemplate string) (*Result, error) {
	branch, err := resolveSpecialToken(ctx, repo, token)
	if err != nil {
		return nil, err
	}
	return resolveBranch(ctx, repo, branch, mode, pathTemplate)
}

func resolveSpecialToken(ctx context.Context, repo *vcs.Repository, token string) (string, error) {
	switch token {
	case "@":
		wt, err := repo.CurrentWorktree(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve: failed to determine current worktree: %w", err)
		}
		if wt.Detached {
			return "", fmt.Errorf("resolve: current worktree is in detached HEAD state, no branch to resolve")
		}
		return wt.Branch, nil
	case "-":
		prev, err := repo.GetConfig(ctx, PreviousBranchConfigKey)
		if err != nil || prev == "" {
			return "", fmt.Errorf("resolve: no previous worktree recorded yet (switch to another worktree first)")
		}
		return prev, nil
	case "^":
		def, err := repo.DefaultBranch(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve: failed to determine default branch: %w", err)
		}
		return def, nil
	default:
		return token, nil
	}
}

func resolveBranch(ctx context.Context, repo *vcs.Repository, branch string, mode Mode, pathTemplate string) (*Result, error) {
	exists, err := repo.BranchExists(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("resolve: failed to check branch %q: %w", branch, err)
	}

	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: failed to list worktrees: %w", err)
	}

	for _, wt := range worktrees {
		if !wt.Detached && wt.Branch == branch {
			return &Result{Kind: KindWorktree, Branch: branch, Path: wt.Path, BranchExists: true}, nil
		}
	}

	if !exists {
		return &Result{Kind: KindBranchOnly, Branch: branch, BranchExists: false}, nil
	}

	if mode == CreateOrSwitch {
		expected, err := ExpectedPath(ctx, repo, branch, pathTemplate)
		if err != nil {
			return nil, err
		}
		for _, wt := range worktrees {
			if wt.Branch == "" || wt.Branch == branch {
				continue
			}
			if PathsMatch(wt.Path, expected) {
				return nil, &PathOccupiedError{Branch: branch, Path: expected, Occupant: wt.Branch}
			}
		}
	}

	return &Result{Kind: KindBranchOnly, Branch: branch, BranchExists: true}, nil
}

// ExpectedPath computes the path a branch's worktree should live at
// (spec §4.G "Expected path computation"). For the default branch in a
// non-bare repository, this is the main worktree's own path; otherwise
// it's the pathTemplate rendered in Literal mode and joined to the repo
// root. Here {{ main_worktree }} and {{ main_worktree_path }} render as
// the main worktree's directory name, so the default template yields a
// sibling of the repo root (e.g. /tmp/demo -> /tmp/demo.feature-x).
func ExpectedPath(ctx context.Context, repo *vcs.Repository, branch, pathTemplate string) (string, error) {
	defaultBranch, err := repo.DefaultBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve: failed to determine default branch: %w", err)
	}

	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve: failed to list worktrees: %w", err)
	}
	var main vcs.Worktree
	if len(worktrees) > 0 {
		main = worktrees[0]
	}

	if branch == defaultBranch && !main.Bare {
		return main.Path, nil
	}

	repoRoot := repo.Root()
	mainName := filepath.Base(main.Path)
	vars := template.Vars{
		Branch:           branch,
		Repo:             filepath.Base(repoRoot),
		MainWorktree:     mainName,
		MainWorktreePath: mainName,
	}
	rendered := template.Expand(pathTemplate, vars, template.Literal)
	joined := filepath.Join(repoRoot, rendered)
	return filepath.Clean(joined), nil
}

// PathsMatch compares two paths for equality tolerant of symlinked
// parent directories, per spec §4.G. Grounded on
// original_source/src/commands/worktree/resolve.rs's
// canonicalize_with_parents/paths_match: when a path doesn't exist
// (the common case for a not-yet-created worktree), the longest
// existing prefix is canonicalized and the non-existent suffix is
// appended unchanged.
func PathsMatch(a, b string) bool {
	return canonicalizeWithParents(a) == canonicalizeWithParents(b)
}

func canonicalizeWithParents(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		abs, err := filepath.Abs(resolved)
		if err == nil {
			return abs
		}
		return resolved
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	var suffix []string
	current := abs
	for {
		if _, statErr := os.Stat(current); statErr == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root without finding an existing prefix.
			return abs
		}
		suffix = append([]string{filepath.Base(current)}, suffix...)
		current = parent
	}

	resolvedPrefix, err := filepath.EvalSymlinks(current)
	if err != nil {
		resolvedPrefix = current
	}
	result := resolvedPrefix
	for _, component := range suffix {
		result = filepath.Join(result, component)
	}
	return result
}
