package removeop

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/riverhollow/wtr/internal/approval"
	"github.com/riverhollow/wtr/internal/audit"
	"github.com/riverhollow/wtr/internal/directive"
	wtrexec "github.com/riverhollow/wtr/internal/exec"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/vcs"
)

const testPathTemplate = "../{{ main_worktree }}.{{ branch }}"

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
	if err := runGit(ctx, repoPath, "commit", "-m", "initial"); err != nil {
		t.Fatalf("git commit: %v", err)
	}
	return repoPath
}

func addWorktree(t *testing.T, ctx context.Context, repoPath, branch, path string) {
	t.Helper()
	if err := runGit(ctx, repoPath, "worktree", "add", "-b", branch, path); err != nil {
		t.Fatalf("git worktree add: %v", err)
	}
}

func newTestEngine(t *testing.T) *hooks.Engine {
	t.Helper()
	dir := t.TempDir()
	store, err := approval.Load(filepath.Join(dir, "approvals.toml"))
	if err != nil {
		t.Fatalf("approval.Load: %v", err)
	}
	auditLog, err := audit.Open(dir)
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	return &hooks.Engine{Approvals: store, Audit: auditLog, Runner: wtrexec.NewRunner(), Project: "test"}
}

func TestRemoveNonCurrentWorktreeDeletesDirectoryAndKeepsBranch(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	worktreePath := filepath.Join(filepath.Dir(repoPath), "repo.feature-a")
	addWorktree(t, ctx, repoPath, "feature-a", worktreePath)

	engine := newTestEngine(t)
	var dir directive.Record
	opts := Options{Token: "feature-a", Mode: DeleteKeep, PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	result, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir, opts)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, statErr := os.Stat(worktreePath); !os.IsNotExist(statErr) {
		t.Error("expected worktree directory to be removed")
	}
	if !result.BranchKept {
		t.Error("expected branch to be kept under DeleteKeep")
	}
	if dir.HasCdTarget {
		t.Error("did not expect a cd directive for a non-current worktree")
	}

	exists, err := repo.BranchExists(ctx, "feature-a")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if !exists {
		t.Error("expected branch feature-a to still exist")
	}
}

func TestRemoveCurrentWorktreeEmitsCdToMain(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	worktreePath := filepath.Join(filepath.Dir(repoPath), "repo.feature-b")
	addWorktree(t, ctx, repoPath, "feature-b", worktreePath)

	featureRepo := vcs.Open(worktreePath)
	engine := newTestEngine(t)
	var dir directive.Record
	opts := Options{Token: "feature-b", Mode: DeleteKeep, PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	if _, err := Remove(ctx, featureRepo, engine, hooks.PhaseSet{}, &dir, opts); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !dir.HasCdTarget {
		t.Fatal("expected a cd directive when removing the current worktree")
	}
	if dir.CdTarget != repoPath {
		t.Errorf("expected cd target %q, got %q", repoPath, dir.CdTarget)
	}
}

func TestRemoveRefusesMainWorktreeOnDefaultBranch(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	engine := newTestEngine(t)
	var dir directive.Record
	opts := Options{Token: "main", Mode: DeleteKeep, PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	if _, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir, opts); err == nil {
		t.Fatal("expected error refusing to remove the main worktree on the default branch")
	}
}

func TestRemoveSafeModeDeletesOnlyWhenMerged(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	mergedPath := filepath.Join(filepath.Dir(repoPath), "repo.merged")
	addWorktree(t, ctx, repoPath, "merged", mergedPath)

	unmergedPath := filepath.Join(filepath.Dir(repoPath), "repo.unmerged")
	addWorktree(t, ctx, repoPath, "unmerged", unmergedPath)
	if err := os.WriteFile(filepath.Join(unmergedPath, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := runGit(ctx, unmergedPath, "add", "new.txt"); err != nil {
		t.Fatalf("git add: %v", err)
	}
	if err := runGit(ctx, unmergedPath, "commit", "-m", "unmerged change"); err != nil {
		t.Fatalf("git commit: %v", err)
	}

	engine := newTestEngine(t)

	var dir1 directive.Record
	opts1 := Options{Token: "merged", Mode: DeleteSafe, Target: "main", PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}
	result1, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir1, opts1)
	if err != nil {
		t.Fatalf("Remove merged: %v", err)
	}
	if result1.BranchKept {
		t.Error("expected merged branch to be deleted under DeleteSafe")
	}

	var dir2 directive.Record
	opts2 := Options{Token: "unmerged", Mode: DeleteSafe, Target: "main", PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}
	result2, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir2, opts2)
	if err != nil {
		t.Fatalf("Remove unmerged: %v", err)
	}
	if !result2.BranchKept {
		t.Error("expected unmerged branch to be kept under DeleteSafe")
	}

	exists, err := repo.BranchExists(ctx, "unmerged")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if !exists {
		t.Error("expected unmerged branch to still exist")
	}
}

func TestRemoveForceModeDeletesUnconditionally(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	unmergedPath := filepath.Join(filepath.Dir(repoPath), "repo.doomed")
	addWorktree(t, ctx, repoPath, "doomed", unmergedPath)
	if err := os.WriteFile(filepath.Join(unmergedPath, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := runGit(ctx, unmergedPath, "add", "new.txt"); err != nil {
		t.Fatalf("git add: %v", err)
	}
	if err := runGit(ctx, unmergedPath, "commit", "-m", "doomed change"); err != nil {
		t.Fatalf("git commit: %v", err)
	}

	engine := newTestEngine(t)
	var dir directive.Record
	opts := Options{Token: "doomed", Mode: DeleteForce, Target: "main", PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	result, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir, opts)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if result.BranchKept {
		t.Error("expected branch to be force-deleted")
	}

	exists, err := repo.BranchExists(ctx, "doomed")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if exists {
		t.Error("expected branch doomed to be gone")
	}
}

func TestRemoveComputesIntegrationReasonBeforeRemoval(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	sameCommitPath := filepath.Join(filepath.Dir(repoPath), "repo.same")
	addWorktree(t, ctx, repoPath, "same", sameCommitPath)

	engine := newTestEngine(t)
	var dir directive.Record
	opts := Options{Token: "same", Mode: DeleteKeep, Target: "main", PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	result, err := Remove(ctx, repo, engine, hooks.PhaseSet{}, &dir, opts)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if result.Integration != ReasonSameCommit {
		t.Errorf("expected ReasonSameCommit, got %q", result.Integration)
	}
}

func TestRemoveRunsPreAndPostRemoveHooks(t *testing.T) {
	repoPath := setupRepo(t)
	repo := vcs.Open(repoPath)
	ctx := context.Background()

	worktreePath := filepath.Join(filepath.Dir(repoPath), "repo.hooked")
	addWorktree(t, ctx, repoPath, "hooked", worktreePath)

	engine := newTestEngine(t)
	var dir directive.Record

	tmp := t.TempDir()
	preMarker := filepath.Join(tmp, "pre-remove-ran")
	postMarker := filepath.Join(tmp, "post-remove-ran")
	phases := hooks.PhaseSet{
		hooks.PhasePreRemove:  {{Name: "mark", Template: "touch " + preMarker}},
		hooks.PhasePostRemove: {{Name: "mark", Template: "touch " + postMarker}},
	}
	opts := Options{Token: "hooked", Mode: DeleteKeep, PathTemplate: testPathTemplate, HookRun: hooks.RunOptions{Force: true}}

	if _, err := Remove(ctx, repo, engine, phases, &dir, opts); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(preMarker); err != nil {
		t.Error("expected pre-remove hook to run")
	}
	if _, err := os.Stat(postMarker); err != nil {
		t.Error("expected post-remove hook to run")
	}
}
