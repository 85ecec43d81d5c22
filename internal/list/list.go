package list

import (
	"context"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/riverhollow/wtr/internal/vcs"
)

// CIStatusFunc looks up a branch's CI status, typically backed by
// internal/cicache. Optional — a nil func leaves every row's CIStatus
// empty.
type CIStatusFunc func(ctx context.Context, branch, headSHA string) (status string, ok bool)

// Row is one worktree's computed line for the list pipeline (spec §4.I).
type Row struct {
	Path               string
	Branch             string
	Upstream           string // "" if untracked
	AheadDefault       int
	BehindDefault      int
	AheadUpstream      int
	BehindUpstream     int
	HasUpstream        bool
	Dirty              bool
	CIStatus           string // "" if unknown/unavailable
	LastCommitSummary  string
	Err                error // non-nil when this row's fields are incomplete
}

// sequentialEnvVar disables the worker pool for debugging (spec §4.I).
const sequentialEnvVar = "WT_SEQUENTIAL"

// BuildRows computes one Row per worktree concurrently, sorted with the
// default branch first and then by branch name (spec §4.I).
//
// batch_ahead_behind is called once up front and read from the
// adapter's cache by every worker, avoiding N individual subprocesses
// for the ahead/behind-vs-default column — grounded on the teacher's
// internal/git/load.go batching a single GetAllBranchConfig call ahead
// of the per-worktree fan-out.
func BuildRows(ctx context.Context, repo *vcs.Repository, worktrees []vcs.Worktree, ciStatus CIStatusFunc) ([]Row, error) {
	defaultBranch, err := repo.DefaultBranch(ctx)
	if err != nil {
		return nil, err
	}

	aheadBehindDefault, err := repo.BatchAheadBehind(ctx, defaultBranch)
	if err != nil {
		return nil, err
	}

	upstreams := make(map[string]string)
	if refs, err := repo.BranchList(ctx, ""); err == nil {
		for _, ref := range refs {
			upstreams[ref.Name] = ref.Upstream
		}
	}

	rows := make([]Row, len(worktrees))

	compute := func(i int) {
		wt := worktrees[i]
		row := Row{Path: wt.Path, Branch: wt.Branch}
		if wt.Detached {
			row.LastCommitSummary, _ = repo.LastCommitSummary(ctx, wt.Head)
			rows[i] = row
			return
		}

		if ab, ok := aheadBehindDefault[wt.Branch]; ok {
			row.AheadDefault, row.BehindDefault = ab[0], ab[1]
		}

		if upstream := upstreams[wt.Branch]; upstream != "" {
			row.Upstream = upstream
			row.HasUpstream = true
			if ahead, behind, err := repo.AheadBehind(ctx, upstream, wt.Branch); err == nil {
				row.AheadUpstream, row.BehindUpstream = ahead, behind
			} else {
				row.Err = err
			}
		}

		if summary, err := repo.LastCommitSummary(ctx, wt.Branch); err == nil {
			row.LastCommitSummary = summary
		} else if row.Err == nil {
			row.Err = err
		}

		// Dirty state is a property of the worktree's own working
		// directory, not of refs shared across worktrees, so it is
		// queried from a Repository scoped to wt.Path rather than the
		// shared handle passed into BuildRows.
		if dirty, err := vcs.Open(wt.Path).IsDirty(ctx); err == nil {
			row.Dirty = dirty
		} else if row.Err == nil {
			row.Err = err
		}

		if ciStatus != nil {
			if status, ok := ciStatus(ctx, wt.Branch, wt.Head); ok {
				row.CIStatus = status
			}
		}

		rows[i] = row
	}

	if isSequential() {
		for i := range worktrees {
			compute(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrencyLimit())
		for i := range worktrees {
			i := i
			g.Go(func() error {
				_ = gctx
				compute(i)
				return nil
			})
		}
		_ = g.Wait() // per-row errors degrade that row only, never the whole list
	}

	sortRows(rows, defaultBranch)
	return rows, nil
}

func sortRows(rows []Row, defaultBranch string) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Branch == defaultBranch {
			return rows[j].Branch != defaultBranch
		}
		if rows[j].Branch == defaultBranch {
			return false
		}
		return rows[i].Branch < rows[j].Branch
	})
}

func isSequential() bool {
	return os.Getenv(sequentialEnvVar) != ""
}

func concurrencyLimit() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}
