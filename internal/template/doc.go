// Package template expands the fixed six-variable placeholder syntax
// used by the worktree path template and hook command templates:
// {{ branch }}, {{ repo }}, {{ worktree }}, {{ main_worktree }},
// {{ main_worktree_path }}, {{ target }}, each optionally piped through
// the one filter `| sanitize`.
//
// Two render modes exist: ShellEscaped (POSIX single-quote wrapping,
// for command strings handed to a shell) and Literal (no escaping, for
// filesystem path segments). A caller never gets to pick the wrong mode
// by accident — Expand takes Mode as an explicit parameter rather than
// exposing two same-shaped functions a caller could transpose.
//
// Generalizes the teacher's internal/hooks.SubstitutePlaceholders /
// shellQuote to spec §4.C's exact variable set.
package template
