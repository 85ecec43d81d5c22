// Package mergeop implements the Merge orchestrator (spec §4.H): it
// refuses to run from the main or default-branch worktree, approves
// every hook phase it might fire up front ("approval at the gate"),
// integrates the current branch into a target by squash or rebase
// unless it is already integrated, forwards the target branch pointer,
// and optionally hands off to internal/removeop to tear down the
// feature worktree afterwards.
//
// New package; no single teacher file covers this. The squash/rebase
// split and the pre-integration "already integrated" short-circuit are
// grounded on original_source/src/commands/dev.rs's handle_dev_squash
// and the rebase path described in handle_merge_jj.rs, reshaped into
// the teacher's phase/hook/vcs composition instead of that codebase's
// direct Repository calls.
package mergeop
