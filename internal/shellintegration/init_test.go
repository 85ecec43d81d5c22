package shellintegration

import (
	"strings"
	"testing"
)

func TestInitGeneratesForEverySupportedShell(t *testing.T) {
	for _, shell := range All {
		out, err := Init(shell, "wtr")
		if err != nil {
			t.Fatalf("Init(%s): %v", shell, err)
		}
		if out == "" {
			t.Errorf("Init(%s) produced empty output", shell)
		}
	}
}

func TestInitUsesCustomCmdThroughout(t *testing.T) {
	out, err := Init(Bash, "git-wtr")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !strings.Contains(out, "git-wtr()") {
		t.Errorf("expected function named git-wtr, got:\n%s", out)
	}
	if !strings.Contains(out, "command git-wtr --internal") {
		t.Errorf("expected invocation of git-wtr, got:\n%s", out)
	}
}

func TestInitRejectsUnsupportedShell(t *testing.T) {
	if _, err := Init(Shell("tcsh"), "wtr"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
