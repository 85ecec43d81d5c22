package vcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// BranchDiffStats returns total lines added/deleted between base and
// head. Malformed numstat lines (binary diffs reported as "-\t-\tpath")
// count as zero, not an error (spec boundary behavior).
func (r *Repository) BranchDiffStats(ctx context.Context, base, head string) (added, deleted int, err error) {
	out, err := r.runHeavy(ctx, "diff --numstat", "diff", "--numstat", fmt.Sprintf("%s...%s", base, head))
	if err != nil {
		return 0, 0, err
	}
	return parseNumstat(string(out))
}

// parseNumstat sums the added/deleted columns of `git diff --numstat`
// output. Binary diffs (reported as "-\t-\tpath") fail the integer parse
// and are silently counted as zero, per spec's boundary behavior.
func parseNumstat(output string) (added, deleted int, err error) {
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			continue
		}
		if a, aErr := strconv.Atoi(fields[0]); aErr == nil {
			added += a
		}
		if d, dErr := strconv.Atoi(fields[1]); dErr == nil {
			deleted += d
		}
	}
	return added, deleted, nil
}

// CountCommits returns the number of commits in a rev range (e.g.
// "base..head").
func (r *Repository) CountCommits(ctx context.Context, revRange string) (int, error) {
	out, err := r.runHeavy(ctx, "rev-list --count", "rev-list", "--count", revRange)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(string(out)))
	if convErr != nil {
		return 0, &ParseError{Operation: "count commits", Detail: convErr.Error()}
	}
	return n, nil
}

// LastCommitSummary returns ref's HEAD commit subject, used by the list
// pipeline's per-row "last commit summary" field.
func (r *Repository) LastCommitSummary(ctx context.Context, ref string) (string, error) {
	out, err := r.runHeavy(ctx, "log -1 --format=%s", "log", "-1", "--format=%s", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CommitSubjects returns one-line subjects for every commit in revRange,
// oldest first.
func (r *Repository) CommitSubjects(ctx context.Context, revRange string) ([]string, error) {
	out, err := r.runHeavy(ctx, "log --format=%s", "log", "--reverse", "--format=%s", revRange)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimRight(string(out), "\n")
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// ChangedFiles returns the set of paths touched between base and head.
// Renames emit both the old and new path (spec §4.A).
func (r *Repository) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	out, err := r.runHeavy(ctx, "diff --name-status -M", "diff", "--name-status", "-M", fmt.Sprintf("%s...%s", base, head))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		if strings.HasPrefix(status, "R") && len(fields) == 3 {
			files = append(files, fields[1], fields[2])
			continue
		}
		files = append(files, fields[1])
	}
	return files, nil
}
