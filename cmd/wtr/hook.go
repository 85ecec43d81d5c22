package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/output"
)

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook <phase> [<name>...]",
		Short: "Run a hook phase's commands directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			phase := hooks.Phase(args[0])
			names := args[1:]

			cmds := state.phases[phase]
			known := false
			for _, p := range hooks.AllPhases {
				if p == phase {
					known = true
					break
				}
			}
			if !known {
				hint := hooks.UnknownPhaseHint(args[0])
				if hint != "" {
					return fmt.Errorf("unknown hook phase %q; did you mean %q?", args[0], hint)
				}
				return fmt.Errorf("unknown hook phase %q", args[0])
			}
			if len(cmds) == 0 {
				output.FromContext(ctx).Printf("no commands configured for %s\n", phase)
				return nil
			}

			repo := state.repo
			worktrees, err := repo.ListWorktrees(ctx)
			if err != nil {
				return fmt.Errorf("failed to list worktrees: %w", err)
			}
			current, err := repo.CurrentWorktree(ctx)
			if err != nil {
				return fmt.Errorf("failed to determine current worktree: %w", err)
			}
			var mainPath string
			if len(worktrees) > 0 {
				mainPath = worktrees[0].Path
			}
			vars := hooks.VarsForWorktree(current.Branch, current.Path, mainPath, "")

			return state.engine.RunPhase(ctx, phase, cmds, vars, runOptions(names...))
		},
	}

	return cmd
}
