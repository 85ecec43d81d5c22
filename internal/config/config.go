package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Context keys for dependency injection
type cfgKey struct{}
type workDirKey struct{}

// WithConfig returns a new context with the config stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, cfgKey{}, cfg)
}

// FromContext returns the config from context.
// Returns nil if no config is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(cfgKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

// WithWorkDir returns a new context with the working directory stored in it.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// WorkDirFromContext returns the working directory from context.
// Falls back to os.Getwd() if not stored or empty.
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok && dir != "" {
		return dir
	}
	wd, _ := os.Getwd()
	return wd
}

// ProjectConfigFileName is the name of the per-repo project config file.
// Kept literally as "wt.toml" (spec.md §6 names this filename verbatim,
// unaffected by the wtr rename).
const ProjectConfigFileName = "wt.toml"

// DefaultWorktreePath is the default worktree-path template (spec.md
// §6): a sibling directory of the main worktree, named after the main
// worktree's own directory name plus the branch.
const DefaultWorktreePath = "../{{ main_worktree }}.{{ branch }}"

// CommitGenerationConfig configures the LLM command used to generate
// squash/commit messages (spec §6 "[commit-generation]").
type CommitGenerationConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// SelectConfig configures the interactive worktree picker (spec §6
// "[select]").
type SelectConfig struct {
	Pager string `toml:"pager"` // optional external pager for long listings
}

// MergeConfig holds merge-related configuration
type MergeConfig struct {
	Strategy string `toml:"strategy"` // "squash", "rebase", or "merge"
}

// CIConfig selects how the CI status cache (component K) talks to the
// hosting forge: shelling out to gh/glab (the default, matching spec
// §1's "PR/CI platform clients... invoked as black-box subprocesses"),
// or the library-mode API backends wired in as the domain-stack
// enrichment (`internal/ci/github.go`, `internal/ci/gitlab.go`).
type CIConfig struct {
	Mode    string `toml:"mode"`     // "cli" (default) or "api"
	BaseURL string `toml:"base_url"` // override for self-hosted GitLab (the GitHub backend ignores it)
}

// ThemeConfig holds theme/color configuration for interactive UI
type ThemeConfig struct {
	Name     string `toml:"name"`     // preset name: "none", "default", "dracula", "nord", "gruvbox", "catppuccin"
	Mode     string `toml:"mode"`     // theme mode: "auto", "light", "dark" (default: "auto")
	Primary  string `toml:"primary"`  // main accent color (borders, titles)
	Accent   string `toml:"accent"`   // highlight color (selected items)
	Success  string `toml:"success"`  // success indicators (checkmarks)
	Error    string `toml:"error"`    // error messages
	Muted    string `toml:"muted"`    // disabled/inactive text
	Normal   string `toml:"normal"`   // standard text
	Info     string `toml:"info"`     // informational text
	Warning  string `toml:"warning"`  // warning indicators (stale items)
	Nerdfont bool   `toml:"nerdfont"` // accepted but unused: wtr renders no nerd font symbols
}

// Config holds the user-level wtr configuration (spec §6 "User config
// (TOML)"). Hook-phase keys (post-create, post-start, ...) live at the
// same file's root table but are parsed separately by
// internal/hooks.ParsePhases, which needs the raw bytes to recover
// named-command insertion order; Config only carries the non-hook keys.
type Config struct {
	WorktreePath               string                 `toml:"worktree-path"`
	SkipShellIntegrationPrompt bool                   `toml:"skip-shell-integration-prompt"`
	CommitGeneration           CommitGenerationConfig `toml:"commit-generation"`
	Select                     SelectConfig           `toml:"select"`
	Merge                      MergeConfig            `toml:"merge"`
	CI                         CIConfig               `toml:"ci"`
	Theme                      ThemeConfig            `toml:"theme"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		WorktreePath: DefaultWorktreePath,
		CI:           CIConfig{Mode: "cli"},
	}
}

// UserConfigPath returns the path to the user config file,
// ~/.config/wtr/config.toml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wtr", "config.toml"), nil
}

// ProjectConfigPath returns the path to the per-repo project config
// file at the repo root (spec §6: ".config/wt.toml").
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".config", ProjectConfigFileName)
}

// Load reads and validates the config file at path, returning the
// parsed Config alongside the raw file bytes (needed by
// internal/hooks.ParsePhases to recover the document's hook-phase
// tables). Returns Default(), nil, nil if the file doesn't exist;
// returns an error only if the file exists but fails to parse or
// validate.
func Load(path string) (Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil, nil
		}
		return Default(), nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := validateEnum(cfg.Merge.Strategy, "merge.strategy", ValidMergeStrategies); err != nil {
		return Default(), nil, fmt.Errorf("%w in %s", err, path)
	}
	if err := validateEnum(cfg.CI.Mode, "ci.mode", ValidCIModes); err != nil {
		return Default(), nil, fmt.Errorf("%w in %s", err, path)
	}

	if cfg.WorktreePath == "" {
		cfg.WorktreePath = DefaultWorktreePath
	}

	return cfg, data, nil
}

// LoadUser loads the user config from UserConfigPath.
func LoadUser() (Config, []byte, error) {
	path, err := UserConfigPath()
	if err != nil {
		return Default(), nil, nil
	}
	return Load(path)
}

// LoadProject loads the per-repo project config from repoRoot (spec
// §6's ".config/wt.toml"). Returns Default(), nil, nil if absent — the
// project config is always optional.
func LoadProject(repoRoot string) (Config, []byte, error) {
	return Load(ProjectConfigPath(repoRoot))
}

// ValidThemeNames is the list of supported theme presets (families)
var ValidThemeNames = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}

// ValidThemeModes is the list of supported theme modes
var ValidThemeModes = []string{"auto", "light", "dark"}

// defaultConfig is the full default config template, written by
// `wtr config init` (the thin pass-through command spec §1 excludes
// from core scope; the template itself still documents the core's
// recognized keys).
const defaultConfig = `# wtr configuration

# Path template for new worktrees.
# Available placeholders: {{ branch }}, {{ repo }}, {{ worktree }},
# {{ main_worktree }} (alias {{ main_worktree_path }}; here the main
# worktree's directory name), {{ target }}.
# Rendered in literal mode (no shell escaping) when building filesystem
# paths.
worktree-path = "../{{ main_worktree }}.{{ branch }}"

# Suppress the first-run shell-integration install prompt.
# skip-shell-integration-prompt = false

# LLM used to draft squash/commit messages.
# [commit-generation]
# command = "claude"
# args = ["-p"]

# Interactive worktree picker settings.
# [select]
# pager = "less -R"

# Merge settings.
# [merge]
# strategy = "squash"  # squash, rebase, or merge

# CI status cache backend.
# [ci]
# mode = "cli"  # "cli" shells out to gh/glab; "api" uses a library client
# base_url = "https://gitlab.example.com/api/v4"  # self-hosted GitLab only

# Hook phases run commands at lifecycle points. Each phase is a
# top-level table (bare string = one unnamed command, or name = template
# pairs for several, run in the order written).
#
# Available placeholders: {{ branch }}, {{ repo }}, {{ worktree }},
# {{ main_worktree }}, {{ main_worktree_path }}, {{ target }}.
#
# [post-create]
# code = "code {{ worktree }}"
#
# [pre-commit]
# lint = "npm run lint"

# Theme settings - customize colors for interactive UI
# Available presets: "none", "default", "dracula", "nord", "gruvbox", "catppuccin"
#
# [theme]
# name = "catppuccin"
# mode = "auto"
# nerdfont = true
`

// DefaultConfig returns the default configuration content.
func DefaultConfig() string {
	return defaultConfig
}
