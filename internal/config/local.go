package config

import (
	"errors"
	"fmt"
	"os"
)

// LoadProjectBytes reads the raw bytes of the per-repo project config
// at ProjectConfigPath(repoRoot) (spec §6: ".config/wt.toml"). The
// project config carries only hook-phase keys (internal/hooks.ParsePhases
// decodes them directly from these bytes) — it has no worktree-path,
// theme, or other user-config keys of its own. Returns nil, nil if the
// file doesn't exist; the project config is always optional.
func LoadProjectBytes(repoRoot string) ([]byte, error) {
	path := ProjectConfigPath(repoRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read project config %s: %w", path, err)
	}
	return data, nil
}

// defaultProjectConfig is the starter template for a project config,
// returned by DefaultProjectConfig; no wtr subcommand writes it out.
const defaultProjectConfig = `# wtr project config (per-repo hook overrides)
# Place this file at .config/wt.toml in the repo root.
# Only hook-phase keys are recognized here; they are concatenated after
# the user config's commands for the same phase.

# [post-create]
# setup = "npm install"

# [pre-commit]
# lint = "npm run lint"
`

// DefaultProjectConfig returns the default project-config template content.
func DefaultProjectConfig() string {
	return defaultProjectConfig
}
