// Package resolve turns a user-supplied token into a concrete worktree
// or branch target (spec §4.G). It handles the three special tokens
// (@, -, ^), branch-first lookup against the registered worktree list,
// and expected-path computation/comparison for the path template.
//
// Kept in spirit from the teacher's internal/resolve (ByIDOrBranch):
// the teacher resolved against a multi-repo ID cache; this package
// resolves a single repository's branches and worktrees directly
// against the VCS adapter, with no ID concept at all.
package resolve
