package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/ci"
	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/list"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/vcs"
)

func newListCmd() *cobra.Command {
	var sequential bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List worktrees and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := state.repo

			if sequential {
				os.Setenv("WT_SEQUENTIAL", "1")
			}

			worktrees, err := repo.ListWorktrees(ctx)
			if err != nil {
				return fmt.Errorf("failed to list worktrees: %w", err)
			}

			rows, err := list.BuildRows(ctx, repo, worktrees, ciStatusFunc(ctx, repo))
			if err != nil {
				return fmt.Errorf("failed to build worktree rows: %w", err)
			}

			output.FromContext(ctx).Println(list.Render(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&sequential, "sequential", false, "Disable parallelism when computing each row")
	return cmd
}

// ciStatusFunc builds the CI-status lookup for list.BuildRows, degrading
// to nil (no CI column data) when there's no remote to resolve a forge
// from.
func ciStatusFunc(ctx context.Context, repo *vcs.Repository) list.CIStatusFunc {
	remoteURL, err := repo.GetOriginURL(ctx)
	if err != nil || remoteURL == "" {
		return nil
	}

	cfg := config.FromContext(ctx)
	mode := ci.ModeShellout
	if cfg.CI.Mode == "api" {
		mode = ci.ModeAPI
	}

	provider, err := ci.New(mode, remoteURL, "", cfg.CI.BaseURL)
	if err != nil {
		return nil
	}

	return ci.CachedStatusFunc(provider, state.repo.Root(), state.commonDir)
}
