package ci

import (
	"context"

	"github.com/riverhollow/wtr/internal/cicache"
	"github.com/riverhollow/wtr/internal/list"
)

// CachedStatusFunc adapts a Provider plus the on-disk cicache into a
// list.CIStatusFunc: a cache hit skips the provider entirely, and a
// provider error degrades to the cached status when the cache entry is
// for the same head (even past its TTL), else to "no status", rather
// than failing the row (spec §4.I's fail-soft per-row aggregation).
func CachedStatusFunc(provider Provider, repoRoot, commonGitDir string) list.CIStatusFunc {
	ttl := cicache.TTL(repoRoot)

	return func(ctx context.Context, branch, headSHA string) (string, bool) {
		cached := cicache.Load(commonGitDir, branch)
		if cached.Valid(headSHA, ttl) {
			return cached.Status, true
		}

		status, err := provider.Status(ctx, branch, headSHA)
		if err != nil {
			// Degrade to a stale same-head cache entry rather than no
			// status at all, per the fail-soft per-row aggregation model.
			if cached != nil && cached.Head == headSHA {
				return cached.Status, true
			}
			return "", false
		}

		_ = cicache.Save(commonGitDir, cicache.Entry{
			Branch:    branch,
			Head:      headSHA,
			Status:    status.Status,
			Source:    string(status.Source),
			URL:       status.URL,
			CheckedAt: status.CheckedAt,
		})
		return status.Status, true
	}
}
