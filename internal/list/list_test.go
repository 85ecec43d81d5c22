package list

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/riverhollow/wtr/internal/vcs"
)

func runGit(ctx context.Context, dir string, args ...string) error {
	full := append([]string{"-C", dir}, args...)
	return exec.CommandContext(ctx, "git", full...).Run()
}

func setupRepo(t *testing.T) string {
	t.Helper()
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	repoPath := filepath.Join(tmpDir, "repo")
	ctx := context.Background()
	if err := exec.CommandContext(ctx, "git", "init", "-b", "main", repoPath).Run(); err != nil {
		t.Fatalf("git init: %v", err)
	}
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		if err := runGit(ctx, repoPath, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	readme := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readme, []byte("# test\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", "README.md"); err != nil {
		t.Fatalf("git add: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "initial commit"); err != nil {
		t.Fatalf("git commit: %v", err)
	}
	return repoPath
}

func TestBuildRowsSortsDefaultBranchFirstThenByName(t *testing.T) {
	repoPath := setupRepo(t)
	ctx := context.Background()

	for _, branch := range []string{"zulu", "alpha"} {
		path := filepath.Join(filepath.Dir(repoPath), "repo."+branch)
		if err := runGit(ctx, repoPath, "worktree", "add", "-b", branch, path); err != nil {
			t.Fatalf("worktree add %s: %v", branch, err)
		}
	}

	repo := vcs.Open(repoPath)
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}

	rows, err := BuildRows(ctx, repo, worktrees, nil)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Branch != "main" {
		t.Errorf("expected main first, got %q", rows[0].Branch)
	}
	if rows[1].Branch != "alpha" || rows[2].Branch != "zulu" {
		t.Errorf("expected alpha then zulu after main, got %q then %q", rows[1].Branch, rows[2].Branch)
	}
}

func TestBuildRowsComputesAheadBehindDefault(t *testing.T) {
	repoPath := setupRepo(t)
	ctx := context.Background()

	featPath := filepath.Join(filepath.Dir(repoPath), "repo.feat")
	if err := runGit(ctx, repoPath, "worktree", "add", "-b", "feat", featPath); err != nil {
		t.Fatalf("worktree add: %v", err)
	}
	file := filepath.Join(featPath, "new.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := runGit(ctx, featPath, "add", "new.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := runGit(ctx, featPath, "commit", "-m", "feat change"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	repo := vcs.Open(repoPath)
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}
	rows, err := BuildRows(ctx, repo, worktrees, nil)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}

	var featRow *Row
	for i := range rows {
		if rows[i].Branch == "feat" {
			featRow = &rows[i]
		}
	}
	if featRow == nil {
		t.Fatal("expected a row for feat")
	}
	if featRow.AheadDefault != 1 || featRow.BehindDefault != 0 {
		t.Errorf("expected 1 ahead, 0 behind, got %d ahead, %d behind", featRow.AheadDefault, featRow.BehindDefault)
	}
	if featRow.LastCommitSummary != "feat change" {
		t.Errorf("expected last commit summary %q, got %q", "feat change", featRow.LastCommitSummary)
	}
}

func TestBuildRowsDetectsDirtyWorktree(t *testing.T) {
	repoPath := setupRepo(t)
	ctx := context.Background()

	featPath := filepath.Join(filepath.Dir(repoPath), "repo.feat")
	if err := runGit(ctx, repoPath, "worktree", "add", "-b", "feat", featPath); err != nil {
		t.Fatalf("worktree add: %v", err)
	}
	if err := os.WriteFile(filepath.Join(featPath, "untracked.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	repo := vcs.Open(repoPath)
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}
	rows, err := BuildRows(ctx, repo, worktrees, nil)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}

	for _, row := range rows {
		if row.Branch == "feat" && !row.Dirty {
			t.Error("expected feat worktree to be reported dirty")
		}
		if row.Branch == "main" && row.Dirty {
			t.Error("expected main worktree to be clean")
		}
	}
}

func TestBuildRowsUsesCIStatusFunc(t *testing.T) {
	repoPath := setupRepo(t)
	ctx := context.Background()
	repo := vcs.Open(repoPath)
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}

	ci := func(ctx context.Context, branch, headSHA string) (string, bool) {
		return "passing", true
	}
	rows, err := BuildRows(ctx, repo, worktrees, ci)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}
	if rows[0].CIStatus != "passing" {
		t.Errorf("expected ci status %q, got %q", "passing", rows[0].CIStatus)
	}
}

func TestBuildRowsSequentialEnvVarMatchesParallel(t *testing.T) {
	repoPath := setupRepo(t)
	ctx := context.Background()

	for _, branch := range []string{"a", "b", "c"} {
		path := filepath.Join(filepath.Dir(repoPath), "repo."+branch)
		if err := runGit(ctx, repoPath, "worktree", "add", "-b", branch, path); err != nil {
			t.Fatalf("worktree add %s: %v", branch, err)
		}
	}

	repo := vcs.Open(repoPath)
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}

	parallelRows, err := BuildRows(ctx, repo, worktrees, nil)
	if err != nil {
		t.Fatalf("BuildRows (parallel): %v", err)
	}

	t.Setenv("WT_SEQUENTIAL", "1")
	sequentialRepo := vcs.Open(repoPath)
	sequentialRows, err := BuildRows(ctx, sequentialRepo, worktrees, nil)
	if err != nil {
		t.Fatalf("BuildRows (sequential): %v", err)
	}

	if len(parallelRows) != len(sequentialRows) {
		t.Fatalf("expected matching row counts, got %d vs %d", len(parallelRows), len(sequentialRows))
	}
	for i := range parallelRows {
		if parallelRows[i].Branch != sequentialRows[i].Branch {
			t.Errorf("row %d: branch mismatch %q vs %q", i, parallelRows[i].Branch, sequentialRows[i].Branch)
		}
	}
}
