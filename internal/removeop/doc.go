// Package removeop implements the Remove orchestrator (spec §4.H): it
// resolves a token to a worktree, computes the branch's integration
// state against a target before any mutation, runs the worktree
// removal and branch deletion under the configured mode, fires
// pre/post-remove and post-switch hooks, and emits a cd directive back
// to the main worktree when the removed worktree was the current one.
//
// New package; no single teacher file covers this — the teacher's
// cmd/wt/prune.go deletes by age/merge heuristics across many repos,
// with no per-worktree integration-reason capture or hook phases.
package removeop
