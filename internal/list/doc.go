// Package list implements the List pipeline (spec §4.I): given the set
// of worktrees from internal/vcs, it computes one row per worktree
// concurrently — ahead/behind counts against both the default branch
// and the worktree's upstream, dirty state, and last-commit summary —
// sorted with the default branch first, then by branch name.
//
// Grounded on the teacher's internal/git/load.go
// (errgroup.WithContext + SetLimit(8), per-repo batch calls read by
// each worker), reshaped from "fan out across repos" to "fan out across
// one repo's worktrees" since this tool manages a single repository.
// Table rendering is grounded on internal/ui/static/table.go
// (lipgloss/table, borderless, bold header).
package list
