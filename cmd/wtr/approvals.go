package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/ui/prompt"
)

func newApprovalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Manage persisted hook-command approvals",
	}
	cmd.AddCommand(newApprovalsAddCmd())
	return cmd
}

func newApprovalsAddCmd() *cobra.Command {
	var (
		force bool
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Batch-approve the configured hook commands for the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			phases := state.phases
			if !all {
				// Without --all, restrict to the phases a plain switch/merge
				// run would actually fire, skipping pre-remove/post-remove
				// which only apply when tearing a worktree down.
				filtered := make(hooks.PhaseSet, len(phases))
				for _, p := range []hooks.Phase{hooks.PhasePostCreate, hooks.PhasePostStart, hooks.PhasePreCommit, hooks.PhasePreMerge, hooks.PhasePostMerge} {
					if cmds, ok := phases[p]; ok {
						filtered[p] = cmds
					}
				}
				phases = filtered
			}

			var templates []string
			seen := make(map[string]bool)
			for _, cmds := range phases {
				for _, c := range cmds {
					if !seen[c.Template] {
						seen[c.Template] = true
						templates = append(templates, c.Template)
					}
				}
			}
			if len(templates) == 0 {
				out.Println("no configured hook commands to approve")
				return nil
			}

			project := state.engine.Project
			var pending []string
			for _, t := range templates {
				if !state.engine.Approvals.IsApproved(project, t) {
					pending = append(pending, t)
				}
			}
			if len(pending) == 0 {
				out.Println("all configured hook commands are already approved")
				return nil
			}

			if !force && !yesFlag {
				out.Println("the following hook command templates are not yet approved:")
				for _, t := range pending {
					out.Printf("  %s\n", t)
				}
				result, err := prompt.Confirm("approve all of the above?")
				if err != nil {
					return err
				}
				if !result.Confirmed {
					out.Println("declined; no approvals recorded")
					return nil
				}
			}

			if err := state.engine.Approvals.ApproveAll(pending, project); err != nil {
				return fmt.Errorf("failed to record approvals: %w", err)
			}
			out.Printf("approved %d command template(s) for %s\n", len(pending), project)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&all, "all", false, "Include pre-remove/post-remove/post-switch phases too")
	return cmd
}
