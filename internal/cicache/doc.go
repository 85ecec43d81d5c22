// Package cicache implements the CI status cache (spec §4.K): one JSON
// file per branch under <common-git-dir>/wt-cache/ci-status/, valid
// while the cached head SHA still matches and the per-repo-jittered TTL
// hasn't elapsed, so a status line for every worktree doesn't always
// cost a network round trip.
//
// Grounded on the teacher's internal/cache (and internal/forge's
// embedded PRCache) atomic read/write idiom: temp file + os.Rename,
// JSON-encoded, missing-file treated as an empty cache rather than an
// error.
package cicache
