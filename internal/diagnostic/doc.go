// Package diagnostic implements the -vv failure-capture document (spec
// §4.L): when the process is about to exit non-zero at maximum verbosity,
// a Markdown report is written to <common-git-dir>/wt-logs/diagnostic.md
// containing the command, exit result, environment summary, worktree
// listing, effective config, and the full verbose log — with ANSI escape
// codes stripped so the file pastes cleanly into an issue tracker.
//
// Grounded on the teacher's internal/log (the verbose-log source this
// package tees from) and its colorprofile dependency (already used for
// terminal capability detection) repurposed here as a stripping writer.
package diagnostic
