package shellintegration

import (
	"fmt"
	"regexp"
)

// ConfigLine returns the line Configure adds to the shell's config
// file: a conditional wrapper guarding against the command being absent
// (so a machine without wtr installed never sees a broken shell
// startup), which sources the output of `<cmd> config shell init
// <shell>` into the running shell.
func ConfigLine(shell Shell, cmd string) string {
	switch shell {
	case Bash, Zsh:
		return fmt.Sprintf(
			`if command -v %s >/dev/null 2>&1; then eval "$(command %s config shell init %s)"; fi`,
			cmd, cmd, shell)
	case Fish:
		return fmt.Sprintf(
			`if type -q %s; command %s config shell init %s | source; end`,
			cmd, cmd, shell)
	case PowerShell:
		return fmt.Sprintf(
			`if (Get-Command %s -ErrorAction SilentlyContinue) { Invoke-Expression (& %s config shell init powershell | Out-String) }`,
			cmd, cmd)
	default:
		return ""
	}
}

// IsIntegrationLine reports whether line is a config-shell-integration
// line for cmd, regardless of which shell generated it. It is used both
// to skip re-adding an existing line and to detect whether integration
// is already installed when warning about a missing restart.
//
// The cmd boundary matters: a prefix like "git-wtr" must not be
// detected by a naive search for "wtr config shell init", since that
// text is also a substring of "git-wtr config shell init" - the
// preceding character must not itself be a command-name character.
func IsIntegrationLine(line, cmd string) bool {
	pattern := fmt.Sprintf(`(^|[^A-Za-z0-9_.-])%s config shell init\b`, regexp.QuoteMeta(cmd))
	matched, err := regexp.MatchString(pattern, line)
	return err == nil && matched
}
