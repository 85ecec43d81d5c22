// Package switchop implements the Switch orchestrator (spec §4.H): it
// turns a resolved token into either an immediate directory change or a
// newly created worktree with post-create/post-start hooks fired, then
// emits a cd directive.
//
// New package composing internal/resolve, internal/vcs,
// internal/hooks, and internal/directive; there is no single teacher
// file this replaces since the teacher's checkout/create flow is split
// across cmd/wt/checkout.go and cmd/wt/create.go without a resolver or
// approval-gated hook stage in between.
package switchop
