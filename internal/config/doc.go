// Package config loads wtr's TOML configuration.
//
// The user config lives at ~/.config/wtr/config.toml and carries the
// non-hook keys (worktree-path, skip-shell-integration-prompt,
// commit-generation, select, merge, ci, theme). The per-repo project
// config at .config/wt.toml in the repo root carries only hook-phase
// keys, concatenated after the user config's for the same phase.
//
// Both files share the same hook-phase top-level tables
// (post-create, post-start, pre-commit, pre-merge, post-merge,
// pre-remove, post-remove, post-switch); this package hands the raw
// file bytes to internal/hooks.ParsePhases rather than owning a Hook
// type itself, since recovering named-command insertion order needs
// toml.MetaData that Config's typed Unmarshal discards.
//
// # Configuration Sources (highest priority first)
//
//   - Environment variable overrides (none yet defined for user config
//     beyond what internal/log and internal/directive read directly)
//   - Project config file (hook phases only)
//   - User config file
//   - Default values
package config
