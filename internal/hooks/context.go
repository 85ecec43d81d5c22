package hooks

import (
	"path/filepath"

	"github.com/riverhollow/wtr/internal/template"
)

// VarsForWorktree builds the fixed template.Vars set (spec §4.C) for a
// hook phase running against a specific worktree. mainWorktreePath is
// the absolute path of the repository's main worktree; target is the
// merge/push/rebase target branch, or "" when the phase has none.
//
// Kept in spirit from the teacher's ContextFromWorktree, rebuilt around
// spec's fixed six-variable set instead of the teacher's free-form
// Context struct.
func VarsForWorktree(branch, worktreePath, mainWorktreePath, target string) template.Vars {
	return template.Vars{
		Branch:           branch,
		Repo:             filepath.Base(mainWorktreePath),
		Worktree:         worktreePath,
		MainWorktree:     mainWorktreePath,
		MainWorktreePath: mainWorktreePath,
		Target:           target,
	}
}

// VarsForRepo builds Vars for a phase that targets the repository as a
// whole rather than one worktree (e.g. a phase run from the main
// worktree itself, with no target branch).
func VarsForRepo(mainWorktreePath string) template.Vars {
	return VarsForWorktree("", mainWorktreePath, mainWorktreePath, "")
}
