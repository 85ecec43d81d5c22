package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riverhollow/wtr/internal/approval"
	"github.com/riverhollow/wtr/internal/audit"
	wtrexec "github.com/riverhollow/wtr/internal/exec"
	"github.com/riverhollow/wtr/internal/template"
)

func newTestEngine(t *testing.T) (*Engine, string) {
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
	return &Engine{
		Approvals: store,
		Audit:     auditLog,
		Runner:    wtrexec.NewRunner(),
		Project:   "test-project",
	}, dir
}

func TestRunPhaseForegroundFailFastStopsOnFirstError(t *testing.T) {
	engine, dir := newTestEngine(t)
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	cmds := []Command{
		{Name: "boom", Template: "exit 1"},
		{Name: "never", Template: "touch " + filepath.Join(dir, "never-should-exist")},
	}

	err := engine.RunPhase(context.Background(), PhasePostCreate, cmds, vars, RunOptions{Force: true})
	if err == nil {
		t.Fatal("expected error from failing command under FailFast")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "never-should-exist")); statErr == nil {
		t.Error("second command ran despite FailFast phase failing on the first")
	}
}

func TestRunPhaseWarnOnlyContinuesAfterError(t *testing.T) {
	engine, dir := newTestEngine(t)
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	marker := filepath.Join(dir, "ran")
	cmds := []Command{
		{Name: "boom", Template: "exit 1"},
		{Name: "after", Template: "touch " + marker},
	}

	// post-merge is WarnOnly per the phase dispatch table.
	if err := engine.RunPhase(context.Background(), PhasePostMerge, cmds, vars, RunOptions{Force: true}); err != nil {
		t.Fatalf("expected WarnOnly phase to swallow the error, got %v", err)
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Error("expected later command to still run under WarnOnly")
	}
}

func TestRunPhaseForceSkipsApprovalGate(t *testing.T) {
	engine, dir := newTestEngine(t)
	vars := template.Vars{Branch: "feature-x", Worktree: dir}
	marker := filepath.Join(dir, "forced")

	cmds := []Command{{Name: "touch", Template: "touch " + marker}}
	if err := engine.RunPhase(context.Background(), PhasePostCreate, cmds, vars, RunOptions{Force: true}); err != nil {
		t.Fatalf("RunPhase with Force: %v", err)
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Error("expected forced command to run without approval")
	}
}

func TestRunPhaseYesPersistsApproval(t *testing.T) {
	engine, dir := newTestEngine(t)
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	tmpl := "echo hello"
	cmds := []Command{{Name: "greet", Template: tmpl}}
	if err := engine.RunPhase(context.Background(), PhasePostCreate, cmds, vars, RunOptions{Yes: true}); err != nil {
		t.Fatalf("RunPhase with Yes: %v", err)
	}

	expansion := template.Expand(tmpl, vars, template.ShellEscaped)
	if !engine.Approvals.IsApproved("test-project", expansion) {
		t.Error("expected --yes run to persist approval for the rendered template")
	}
}

func TestRunPhaseNonInteractiveWithoutYesFailsClosed(t *testing.T) {
	engine, dir := newTestEngine(t)
	engine.IsTTY = func() bool { return false }
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	cmds := []Command{{Name: "greet", Template: "echo hello"}}
	err := engine.RunPhase(context.Background(), PhasePostCreate, cmds, vars, RunOptions{})
	if err == nil {
		t.Fatal("expected non-interactive unapproved run to fail closed")
	}
}

func TestRunPhaseAlreadyApprovedSkipsGate(t *testing.T) {
	engine, dir := newTestEngine(t)
	engine.IsTTY = func() bool { return false }
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	tmpl := "echo hello"
	expansion := template.Expand(tmpl, vars, template.ShellEscaped)
	if err := engine.Approvals.ApproveAll([]string{expansion}, "test-project"); err != nil {
		t.Fatalf("ApproveAll: %v", err)
	}

	cmds := []Command{{Name: "greet", Template: tmpl}}
	if err := engine.RunPhase(context.Background(), PhasePostCreate, cmds, vars, RunOptions{}); err != nil {
		t.Fatalf("expected previously-approved command to run without prompting, got %v", err)
	}
}

func TestApproveAtGateCoversMultiplePhasesUpFront(t *testing.T) {
	engine, dir := newTestEngine(t)
	vars := template.Vars{Branch: "feature-x", Worktree: dir}

	phases := map[Phase][]Command{
		PhasePreMerge:  {{Name: "a", Template: "echo a"}},
		PhasePostMerge: {{Name: "b", Template: "echo b"}},
	}
	if err := engine.ApproveAtGate(phases, vars, RunOptions{Yes: true}); err != nil {
		t.Fatalf("ApproveAtGate: %v", err)
	}

	for phase, cmds := range phases {
		for _, c := range cmds {
			expansion := template.Expand(c.Template, vars, template.ShellEscaped)
			if !engine.Approvals.IsApproved("test-project", expansion) {
				t.Errorf("phase %s command %q not approved after ApproveAtGate", phase, c.Name)
			}
		}
	}
}
