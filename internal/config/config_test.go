package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.WorktreePath != DefaultWorktreePath {
		t.Errorf("expected worktree-path %q, got %q", DefaultWorktreePath, cfg.WorktreePath)
	}
	if cfg.CI.Mode != "cli" {
		t.Errorf("expected default ci.mode %q, got %q", "cli", cfg.CI.Mode)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, data, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data for missing file, got %q", data)
	}
	if cfg.WorktreePath != DefaultWorktreePath {
		t.Errorf("expected default worktree-path, got %q", cfg.WorktreePath)
	}
}

func TestLoadParsesTopLevelKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `worktree-path = "../{{ branch }}"
skip-shell-integration-prompt = true

[commit-generation]
command = "claude"
args = ["-p", "write a commit message"]

[select]
pager = "less -R"

[merge]
strategy = "squash"

[ci]
mode = "api"
base_url = "https://github.example.com/api/v3"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, data, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorktreePath != "../{{ branch }}" {
		t.Errorf("worktree-path = %q", cfg.WorktreePath)
	}
	if !cfg.SkipShellIntegrationPrompt {
		t.Error("expected skip-shell-integration-prompt = true")
	}
	if cfg.CommitGeneration.Command != "claude" || len(cfg.CommitGeneration.Args) != 2 {
		t.Errorf("commit-generation = %+v", cfg.CommitGeneration)
	}
	if cfg.Select.Pager != "less -R" {
		t.Errorf("select.pager = %q", cfg.Select.Pager)
	}
	if cfg.Merge.Strategy != "squash" {
		t.Errorf("merge.strategy = %q", cfg.Merge.Strategy)
	}
	if cfg.CI.Mode != "api" || cfg.CI.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("ci = %+v", cfg.CI)
	}
	if len(data) == 0 {
		t.Error("expected raw bytes to be returned for hook-phase parsing")
	}
}

func TestLoadRejectsInvalidMergeStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[merge]\nstrategy = \"bogus\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid merge.strategy")
	}
}

func TestLoadRejectsInvalidCIMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ci]\nmode = \"bogus\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid ci.mode")
	}
}

func TestLoadDefaultsEmptyWorktreePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("skip-shell-integration-prompt = true\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorktreePath != DefaultWorktreePath {
		t.Errorf("expected default worktree-path when unset, got %q", cfg.WorktreePath)
	}
}

func TestProjectConfigPathIsLiteralWtToml(t *testing.T) {
	got := ProjectConfigPath("/repo")
	want := "/repo/.config/wt.toml"
	if got != want {
		t.Errorf("ProjectConfigPath = %q, want %q", got, want)
	}
}

func TestLoadProjectBytesMissingFileReturnsNil(t *testing.T) {
	data, err := LoadProjectBytes(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProjectBytes: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data, got %q", data)
	}
}

func TestLoadProjectBytesReadsHookPhaseTables(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".config"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[post-create]\nsetup = \"npm install\"\n"
	if err := os.WriteFile(ProjectConfigPath(dir), []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := LoadProjectBytes(dir)
	if err != nil {
		t.Fatalf("LoadProjectBytes: %v", err)
	}
	if string(data) != content {
		t.Errorf("LoadProjectBytes = %q, want %q", data, content)
	}
}
