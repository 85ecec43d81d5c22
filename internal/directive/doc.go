// Package directive implements the shell-integration directive protocol
// (spec §4.F): a structured record — optional cd target, optional exec
// script, optional exit-code override — written once near process end to
// a side file whose path arrives via an environment variable. A thin
// shell wrapper (generated by `wtr config shell init`) reads and evals
// that file; it never evals the tool's stdout or stderr.
//
// All user-visible messages go to stderr; only the directive fragment
// goes to the file, so a hostile branch name or error message can never
// become executable shell code (spec §9's rejection of stdout-eval).
package directive
