package main

import (
	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/forge"
	"github.com/riverhollow/wtr/internal/switchop"
)

func newSwitchCmd() *cobra.Command {
	var (
		create     bool
		base       string
		clobber    bool
		execScript string
	)

	cmd := &cobra.Command{
		Use:   "switch <token>",
		Short: "Switch to a worktree, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := state.repo
			token := args[0]

			var f forge.Forge
			remoteURL, _ := repo.GetOriginURL(ctx)
			if remoteURL != "" {
				f = forge.Detect(remoteURL)
			}

			// A token that isn't a known local branch but matches
			// "origin/<token>" is treated as a remote-tracking branch to
			// check out, not a new one (spec §4.G step 3) — there is no
			// --track flag, this is always auto-detected.
			var trackRemote bool
			if !create {
				if exists, err := repo.BranchExists(ctx, token); err == nil && !exists {
					trackRemote, _ = repo.RemoteBranchExists(ctx, "origin", token)
				}
			}

			opts := switchop.Options{
				Token:        token,
				Create:       create,
				Base:         base,
				TrackRemote:  trackRemote,
				Clobber:      clobber,
				PathTemplate: config.FromContext(ctx).WorktreePath,
				LogDir:       logDir(),
				HookRun:      runOptions(),
				Forge:        f,
				Remote:       "origin",
			}

			if err := switchop.Switch(ctx, repo, state.engine, state.phases, state.dir, opts); err != nil {
				return err
			}
			if execScript != "" {
				state.dir.SetExec(execScript)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&create, "create", "c", false, "Create the branch if it doesn't exist")
	cmd.Flags().StringVar(&base, "base", "", "Base ref for a newly created branch")
	cmd.Flags().BoolVar(&clobber, "clobber", false, "Back up and replace a directory already at the expected path")
	cmd.Flags().StringVarP(&execScript, "execute", "x", "", "Shell script to run in the worktree after switching (requires --internal)")
	return cmd
}
