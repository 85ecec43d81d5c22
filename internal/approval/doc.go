// Package approval is the per-project persisted set of approved
// command-template strings (spec §4.D). It answers is-approved queries
// against an in-memory copy loaded once per invocation, and writes
// changes back atomically (temp file + rename), grounded on the
// teacher's internal/cache.Save pattern.
//
// Approvals are keyed on the exact template string, never the rendered
// expansion — approving `echo {{ branch }}` once covers every branch
// (spec §9). Implementations must not normalize whitespace or quoting
// before comparison.
package approval
