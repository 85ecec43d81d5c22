package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/shellintegration"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap wtr configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigShellCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default user config file if one doesn't exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			path, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				out.Printf("%s already exists\n", path)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(config.DefaultConfig()), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			out.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the user config file's contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			path, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					out.Print(config.DefaultConfig())
					return nil
				}
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			out.Print(string(data))
			return nil
		},
	}
}

func newConfigShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Manage shell integration",
	}
	cmd.AddCommand(newConfigShellInitCmd())
	cmd.AddCommand(newConfigShellInstallCmd())
	return cmd
}

func newConfigShellInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <shell>",
		Short: "Print the eval-able shell init script for the directive channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := shellintegration.Parse(args[0])
			if err != nil {
				return err
			}
			script, err := shellintegration.Init(shell, "wtr")
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Print(script)
			return nil
		},
	}
}

func newConfigShellInstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install [<shell>...]",
		Short: "Append the shell integration line to detected shell config files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var shells []shellintegration.Shell
			for _, name := range args {
				sh, err := shellintegration.Parse(name)
				if err != nil {
					return err
				}
				shells = append(shells, sh)
			}
			if shells == nil {
				if sh, ok := shellintegration.Current(); ok {
					shells = []shellintegration.Shell{sh}
				}
			}

			var (
				results []shellintegration.Result
				err     error
			)
			if dryRun {
				results, err = shellintegration.Scan(shells, "wtr")
			} else {
				results, err = shellintegration.Configure(shells, "wtr")
			}
			if err != nil {
				return err
			}

			out := output.FromContext(cmd.Context())
			for _, r := range results {
				out.Printf("%s: %s (%s)\n", r.Shell, r.Action, r.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would change without writing")
	return cmd
}
