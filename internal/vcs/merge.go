package vcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// mergeBaseKey normalizes the symmetric merge-base relation (spec
// invariant 4: merge_base(a,b) == merge_base(b,a)) by sorting the two
// refs lexicographically before using them as a cache key.
func mergeBaseKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// MergeBase returns the merge-base SHA of a and b, memoized per process.
// ok is false when the refs have no common ancestor (exit 1, not an
// error per git's own semantics).
func (r *Repository) MergeBase(ctx context.Context, a, b string) (sha string, ok bool, err error) {
	key := mergeBaseKey(a, b)

	r.mu.Lock()
	if entry, hit := r.mergeBaseCache[key]; hit {
		r.mu.Unlock()
		return entry.sha, entry.ok, nil
	}
	r.mu.Unlock()

	out, runErr := r.run(ctx, "merge-base", "merge-base", a, b)
	var entry mergeBaseEntry
	if runErr != nil {
		if ce, isCmd := runErr.(*CommandError); isCmd && ce.ExitCode == 1 {
			entry = mergeBaseEntry{sha: "", ok: false}
		} else {
			return "", false, runErr
		}
	} else {
		entry = mergeBaseEntry{sha: strings.TrimSpace(string(out)), ok: true}
	}

	r.mu.Lock()
	r.mergeBaseCache[key] = entry
	r.mu.Unlock()
	return entry.sha, entry.ok, nil
}

// AheadBehind returns how many commits head is ahead/behind base.
func (r *Repository) AheadBehind(ctx context.Context, base, head string) (ahead, behind int, err error) {
	out, err := r.runHeavy(ctx, "rev-list --count --left-right", "rev-list", "--left-right", "--count", fmt.Sprintf("%s...%s", base, head))
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, &ParseError{Operation: "ahead/behind", Detail: "expected two count fields, got " + string(out)}
	}
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, &ParseError{Operation: "ahead/behind", Detail: err.Error()}
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, &ParseError{Operation: "ahead/behind", Detail: err.Error()}
	}
	return ahead, behind, nil
}

// BatchAheadBehind computes ahead/behind for every local branch against
// base in a single subprocess, memoized per (base) for the process
// lifetime. Grounded on original_source/src/git/repository/diff.rs's
// batch_ahead_behind: git 2.36+'s `%(ahead-behind:<base>)` for-each-ref
// atom reports every branch's counts from one process instead of
// fanning out a rev-list per branch.
func (r *Repository) BatchAheadBehind(ctx context.Context, base string) (map[string][2]int, error) {
	r.mu.Lock()
	if cached, hit := r.batchAheadBehindCache[base]; hit {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	format := fmt.Sprintf("--format=%%(refname:lstrip=2) %%(ahead-behind:%s)", base)
	refsOut, err := r.run(ctx, "for-each-ref", "for-each-ref", format, "refs/heads/")
	if err != nil {
		return nil, err
	}

	result := make(map[string][2]int)
	for _, line := range strings.Split(strings.TrimRight(string(refsOut), "\n"), "\n") {
		if line == "" {
			continue
		}
		// Format: "branch-name ahead behind"
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		behind, behindErr := strconv.Atoi(fields[len(fields)-1])
		ahead, aheadErr := strconv.Atoi(fields[len(fields)-2])
		if behindErr != nil || aheadErr != nil {
			continue
		}
		name := strings.Join(fields[:len(fields)-2], " ")
		if name == "" || name == base {
			continue
		}
		result[name] = [2]int{ahead, behind}
	}

	r.mu.Lock()
	r.batchAheadBehindCache[base] = result
	r.mu.Unlock()
	return result, nil
}
