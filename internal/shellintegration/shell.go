// Package shellintegration generates and installs the shell wrapper
// function that lets `cd`/`--execute` directives reach the calling
// shell (spec §4.L, §6's environment variables). The wrapper itself
// stays out of scope for argument parsing, but detecting and writing it
// is not - it is the other half of the directive channel in
// internal/directive.
package shellintegration

import "fmt"

// Shell identifies a supported shell family. Nushell is dropped relative
// to the original tool's five-shell support: it is a fifth shell with
// its own syntax family for a feature (shell wrapper install) that is
// already a stretch beyond spec §1's explicit non-goals, and nothing
// else in this repository exercises it.
type Shell string

const (
	Bash       Shell = "bash"
	Zsh        Shell = "zsh"
	Fish       Shell = "fish"
	PowerShell Shell = "powershell"
)

// All lists the supported shells in a fixed, user-facing order.
var All = []Shell{Bash, Zsh, Fish, PowerShell}

// Parse maps a shell name (as typed on the command line) to a Shell,
// case-insensitively.
func Parse(name string) (Shell, error) {
	for _, s := range All {
		if string(s) == lower(name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", name)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
