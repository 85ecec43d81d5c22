// Package project derives a repository's stable identity key (spec §3
// "Project identity"): the remote's host/owner/repo when one is
// configured, falling back to the main worktree's absolute path. This
// key scopes per-project state such as the approval store.
//
// New package; the host/owner/repo parsing is grounded on the teacher's
// internal/forge/detect.go URL-sniffing (isGitHub/isGitLab), generalized
// from "which forge is this" to "what host/owner/repo triple is this".
package project
