package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/removeop"
)

func newRemoveCmd() *cobra.Command {
	var (
		noDeleteBranch bool
		force          bool
		noBackground   bool
	)

	cmd := &cobra.Command{
		Use:   "remove <token>...",
		Short: "Remove one or more worktrees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := state.repo
			out := output.FromContext(ctx)

			target, err := repo.DefaultBranch(ctx)
			if err != nil {
				target = ""
			}

			mode := removeop.DeleteSafe
			switch {
			case noDeleteBranch:
				mode = removeop.DeleteKeep
			case force:
				mode = removeop.DeleteForce
			}

			for _, token := range args {
				opts := removeop.Options{
					Token:        token,
					Mode:         mode,
					Target:       target,
					ForceRemove:  force,
					NoBackground: noBackground,
					PathTemplate: config.FromContext(ctx).WorktreePath,
					HookRun:      runOptions(),
				}

				result, err := removeop.Remove(ctx, repo, state.engine, state.phases, state.dir, opts)
				if err != nil {
					return fmt.Errorf("remove %q: %w", token, err)
				}

				out.Printf("removed worktree for %s at %s\n", result.Branch, result.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&noDeleteBranch, "no-delete-branch", "D", false, "Keep the branch after removing its worktree")
	cmd.Flags().BoolVar(&force, "force", false, "Delete the branch unconditionally, even if unmerged, and discard uncommitted changes in its worktree")
	cmd.Flags().BoolVar(&noBackground, "no-background", false, "Remove the current worktree in the foreground instead of a detached spawn")
	return cmd
}
