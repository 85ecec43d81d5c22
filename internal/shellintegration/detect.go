package shellintegration

import (
	"os"
	"strings"
)

// ExtractShellName strips the directory and, on Windows, a `.exe` suffix
// from a shell path, matching $SHELL values like
// `/usr/bin/bash` or `C:\Program Files\Git\usr\bin\bash.exe`.
// file_stem() is deliberately avoided - it would also strip the ".9" off
// a versioned binary like "zsh-5.9".
func ExtractShellName(path string) string {
	name := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		name = path[i+1:]
	}
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		return name[:len(name)-4]
	}
	return name
}

// shellFromName maps a bare executable name to a Shell, tolerating
// version suffixes such as "zsh-5.9" or "bash5" by prefix match once an
// exact match fails.
func shellFromName(name string) (Shell, bool) {
	if s, err := Parse(name); err == nil {
		return s, true
	}
	lowered := lower(name)
	switch {
	case strings.HasPrefix(lowered, "zsh"):
		return Zsh, true
	case strings.HasPrefix(lowered, "bash"):
		return Bash, true
	case strings.HasPrefix(lowered, "fish"):
		return Fish, true
	case strings.HasPrefix(lowered, "pwsh"), strings.HasPrefix(lowered, "powershell"):
		return PowerShell, true
	}
	return "", false
}

// Current detects the caller's shell from the environment: first by
// parsing $SHELL (set on Unix, and by Git Bash on Windows), then by
// falling back to the presence of $PSModulePath, which PowerShell sets
// on every platform it runs on.
func Current() (Shell, bool) {
	if shellPath := os.Getenv("SHELL"); shellPath != "" {
		if s, ok := shellFromName(ExtractShellName(shellPath)); ok {
			return s, true
		}
	}
	if _, ok := os.LookupEnv("PSModulePath"); ok {
		return PowerShell, true
	}
	return "", false
}
