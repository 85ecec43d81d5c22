package shellintegration

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPaths returns the candidate config file paths for shell, in
// order of preference; the first one that exists is the one Configure
// appends the integration line to, matching the original tool's
// first-existing-wins rule. cmd is the invoked command name (e.g. "wtr"
// or "git-wtr"), which only affects the Fish path.
func ConfigPaths(shell Shell, cmd string) ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("shellintegration: resolve home dir: %w", err)
	}

	switch shell {
	case Bash:
		return []string{
			filepath.Join(home, ".bashrc"),
			filepath.Join(home, ".bash_profile"),
		}, nil
	case Zsh:
		return []string{filepath.Join(home, ".zshrc")}, nil
	case Fish:
		return []string{filepath.Join(home, ".config", "fish", "functions", cmd+".fish")}, nil
	case PowerShell:
		return []string{powerShellProfilePath(home)}, nil
	default:
		return nil, fmt.Errorf("shellintegration: unsupported shell %q", shell)
	}
}

// LegacyFishConfDPath is the previous Fish install location
// (~/.config/fish/conf.d/<cmd>.fish). Fish sources every file under
// conf.d/ at every prompt, which is unnecessary work for a function that
// is only invoked by name; functions/ is autoloaded on first use instead.
// Configure neither checks nor removes a file at this path.
func LegacyFishConfDPath(home, cmd string) string {
	return filepath.Join(home, ".config", "fish", "conf.d", cmd+".fish")
}

func powerShellProfilePath(home string) string {
	// This is pwsh's $PROFILE on non-Windows systems, which is what a
	// developer using PowerShell shell integration on a non-Windows box
	// is running; the Windows location under the Documents tree is not
	// covered.
	return filepath.Join(home, ".config", "powershell", "Microsoft.PowerShell_profile.ps1")
}
