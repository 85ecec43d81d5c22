package shellintegration

import "testing"

func TestExtractShellName(t *testing.T) {
	cases := []struct {
		path, want string
	}{
		{"/usr/bin/bash", "bash"},
		{"/bin/zsh", "zsh"},
		{`C:\Program Files\Git\usr\bin\bash.exe`, "bash"},
		{`C:\WINDOWS\SYSTEM32\BASH.EXE`, "BASH"},
		{"/nix/store/abc123/zsh-5.9", "zsh-5.9"},
	}
	for _, c := range cases {
		if got := ExtractShellName(c.path); got != c.want {
			t.Errorf("ExtractShellName(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestShellFromNameHandlesVersionSuffixes(t *testing.T) {
	cases := []struct {
		name string
		want Shell
		ok   bool
	}{
		{"bash5", Bash, true},
		{"zsh-5.9", Zsh, true},
		{"fish", Fish, true},
		{"pwsh", PowerShell, true},
		{"powershell", PowerShell, true},
		{"tcsh", "", false},
	}
	for _, c := range cases {
		got, ok := shellFromName(c.name)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("shellFromName(%q) = (%q, %v), want (%q, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestCurrentPrefersShellEnvVar(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	t.Setenv("PSModulePath", "")
	s, ok := Current()
	if !ok || s != Zsh {
		t.Errorf("Current() = (%q, %v), want (zsh, true)", s, ok)
	}
}

func TestCurrentFallsBackToPSModulePath(t *testing.T) {
	t.Setenv("SHELL", "")
	t.Setenv("PSModulePath", `C:\Program Files\WindowsPowerShell\Modules`)
	s, ok := Current()
	if !ok || s != PowerShell {
		t.Errorf("Current() = (%q, %v), want (powershell, true)", s, ok)
	}
}
