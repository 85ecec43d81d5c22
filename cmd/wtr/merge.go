package main

import (
	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/mergeop"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/removeop"
)

func newMergeCmd() *cobra.Command {
	var (
		squash      bool
		noSquash    bool
		remove      bool
		noRemove    bool
		trackedOnly bool
		noVerify    bool
	)

	cmd := &cobra.Command{
		Use:   "merge [<target>]",
		Short: "Integrate the current worktree's branch into a target branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := state.repo

			var target string
			if len(args) == 1 {
				target = args[0]
			}

			strategy := mergeop.Squash
			if noSquash || !squash {
				strategy = mergeop.Rebase
			}

			phases := state.phases
			if noVerify {
				// --no-verify mirrors `git commit --no-verify`: skip the
				// commit-gating hook, not the post-integration ones.
				filtered := make(hooks.PhaseSet, len(phases))
				for phase, cmds := range phases {
					if phase == hooks.PhasePreCommit {
						continue
					}
					filtered[phase] = cmds
				}
				phases = filtered
			}

			opts := mergeop.Options{
				Target:       target,
				Strategy:     strategy,
				TrackedOnly:  trackedOnly,
				Remove:       remove && !noRemove,
				RemoveMode:   removeop.DeleteSafe,
				PathTemplate: config.FromContext(ctx).WorktreePath,
				HookRun:      runOptions(),
			}

			result, err := mergeop.Merge(ctx, repo, state.engine, phases, state.dir, opts)
			if err != nil {
				return err
			}

			out := output.FromContext(ctx)
			if result.CommitSHA != "" {
				out.Printf("merged as %s\n", result.CommitSHA)
			}
			if result.Removed {
				out.Println("removed the feature worktree")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&squash, "squash", true, "Squash the feature branch into a single commit before integrating (default)")
	cmd.Flags().BoolVar(&noSquash, "no-squash", false, "Rebase onto the target instead of squashing")
	cmd.Flags().BoolVar(&remove, "remove", true, "Remove the feature worktree after a successful merge (default)")
	cmd.Flags().BoolVar(&noRemove, "no-remove", false, "Keep the feature worktree after merging")
	cmd.Flags().BoolVar(&trackedOnly, "tracked-only", false, "Stage only already-tracked changes (git add -u) instead of everything")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the pre-commit hook phase")
	return cmd
}
