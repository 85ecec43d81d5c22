// Package hooks is the hook engine (spec §4.E): for a given phase, it
// loads the project's configured commands (merged with a user overlay
// in append order), renders each command's template once, partitions
// commands into already-approved and needs-approval by exact
// template-string match against the approval store, prompts for batch
// approval when needed, and dispatches each command to the subprocess
// runner under the phase's discipline and failure strategy.
//
// Kept and generalized from the teacher's internal/hooks/hooks.go
// (CommandType/Context/SelectHooks/RunAll): its on-condition matching
// and single-command-per-hook model is replaced here by spec's
// named-phase, multi-command, approval-gated model, but the shape of
// "select, then run each, logging failures per discipline" survives.
package hooks
