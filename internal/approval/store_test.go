package approval

import (
	"path/filepath"
	"testing"
)

func TestIsApprovedFalseBeforeApprove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.toml")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.IsApproved("org/repo", "echo {{ branch }}") {
		t.Fatal("expected unapproved template to report false")
	}
}

func TestApproveAllPersistsAcrossFreshLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.toml")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tmpl := "echo {{ branch }}"
	if err := store.ApproveAll([]string{tmpl}, "org/repo"); err != nil {
		t.Fatalf("ApproveAll: %v", err)
	}
	if !store.IsApproved("org/repo", tmpl) {
		t.Fatal("expected template to be approved immediately after ApproveAll")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsApproved("org/repo", tmpl) {
		t.Fatal("approval did not persist across a fresh load")
	}
}

func TestApprovalKeyedOnExactTemplateString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.toml")
	store, _ := Load(path)

	if err := store.ApproveAll([]string{"echo {{ branch }}"}, "org/repo"); err != nil {
		t.Fatalf("ApproveAll: %v", err)
	}

	// A whitespace-different rendering of the "same" logical command is
	// a different template string and must not be considered approved.
	if store.IsApproved("org/repo", "echo  {{ branch }}") {
		t.Fatal("approval matched a differently-whitespaced template; comparison must be exact")
	}
}

func TestClearRemovesProjectApprovals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.toml")
	store, _ := Load(path)
	tmpl := "echo hi"

	if err := store.ApproveAll([]string{tmpl}, "org/repo"); err != nil {
		t.Fatalf("ApproveAll: %v", err)
	}
	if err := store.Clear("org/repo"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.IsApproved("org/repo", tmpl) {
		t.Fatal("expected approval to be gone after Clear")
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "approvals.toml")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if store.IsApproved("anything", "anything") {
		t.Fatal("fresh store should report nothing approved")
	}
}
