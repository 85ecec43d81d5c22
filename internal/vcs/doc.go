// Package vcs is the typed facade over the git subprocess: worktree
// listing, branch refs, merge-base, ahead/behind, and diff stats.
//
// A *Repository owns a per-process cache of idempotent results
// (merge-base, default branch, batch ahead/behind) and a heavy-ops
// semaphore that bounds concurrent rev-list/diff subprocesses. It never
// panics on malformed git output; parse failures surface as typed errors
// and never poison the cache.
package vcs
