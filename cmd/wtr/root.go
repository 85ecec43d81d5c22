// Package main is the wtr command-line entrypoint.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riverhollow/wtr/internal/approval"
	"github.com/riverhollow/wtr/internal/audit"
	"github.com/riverhollow/wtr/internal/config"
	"github.com/riverhollow/wtr/internal/diagnostic"
	"github.com/riverhollow/wtr/internal/directive"
	wtrexec "github.com/riverhollow/wtr/internal/exec"
	"github.com/riverhollow/wtr/internal/hooks"
	"github.com/riverhollow/wtr/internal/list"
	"github.com/riverhollow/wtr/internal/log"
	"github.com/riverhollow/wtr/internal/output"
	"github.com/riverhollow/wtr/internal/project"
	"github.com/riverhollow/wtr/internal/shellintegration"
	"github.com/riverhollow/wtr/internal/vcs"
)

// Global flags, following the teacher's package-level flag-var idiom
// (cmd/wt/root.go's verbose/quiet/cfg/workDir).
var (
	verboseCount int
	quiet        bool
	yesFlag      bool
	internalFlag bool
)

// app is the assembled state every subcommand needs: the repository
// handle, the merged hook-phase set, the hook engine, and the
// directive record accumulated over the invocation (spec §4.F, §4.H).
// Populated once in rootCmd's PersistentPreRunE.
type app struct {
	repo      *vcs.Repository
	phases    hooks.PhaseSet
	engine    *hooks.Engine
	dir       *directive.Record
	commonDir string
	recorder  *diagnostic.Recorder
}

var state *app

func runOptions(names ...string) hooks.RunOptions {
	return hooks.RunOptions{
		Yes:    yesFlag,
		Names:  names,
		LogDir: logDir(),
	}
}

func logDir() string {
	if state == nil {
		return ""
	}
	return filepath.Join(state.commonDir, "wt-logs")
}

// rootCmd is the base command when wtr is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "wtr",
	Short: "Git worktree manager driven by hook phases",
	Long: `wtr manages git worktrees as the unit of feature development:
switching into one (creating it on demand), merging it back, and
tearing it down, with configurable commands run at each lifecycle
phase.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "__complete", "help", "version":
			return nil
		}
		return setup(cmd)
	},
}

func setup(cmd *cobra.Command) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	repo := vcs.Open(workDir)

	ctx := cmd.Context()
	if _, err := repo.ListWorktrees(ctx); err != nil {
		return fmt.Errorf("not a git repository (or any parent): %w", err)
	}

	userCfg, _, err := config.LoadUser()
	if err != nil {
		return err
	}

	projectRoot := workDir
	if wt, err := repo.CurrentWorktree(ctx); err == nil && wt.Path != "" {
		projectRoot = wt.Path
	}
	projectBytes, err := config.LoadProjectBytes(projectRoot)
	if err != nil {
		return err
	}

	userPhases, err := hooks.ParsePhases(mustLoadUserBytes())
	if err != nil {
		return fmt.Errorf("parsing user config hooks: %w", err)
	}
	projectPhases, err := hooks.ParsePhases(projectBytes)
	if err != nil {
		return fmt.Errorf("parsing project config hooks: %w", err)
	}
	phases := hooks.Merge(userPhases, projectPhases)

	commonDir, err := repo.CommonDir(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve common git directory: %w", err)
	}

	auditLog, err := audit.Open(commonDir)
	if err != nil {
		return err
	}

	approvalPath, err := config.UserConfigPath()
	if err != nil {
		return err
	}
	approvalStore, err := approval.Load(approvalsPath(approvalPath))
	if err != nil {
		return err
	}

	recorder := diagnostic.NewRecorder()
	verbose := verboseCount >= 1
	logWriter := io.Writer(os.Stderr)
	if verboseCount >= 2 {
		// Only -vv pays for a second in-memory copy of the verbose log,
		// since it alone can end up flushed into a diagnostic document
		// (spec §4.L).
		logWriter = recorder.Tee(os.Stderr)
	}
	logger := log.New(logWriter, verbose, quiet)
	ctx = log.WithLogger(ctx, logger)
	ctx = output.WithPrinter(ctx, os.Stdout)
	ctx = config.WithConfig(ctx, &userCfg)
	ctx = config.WithWorkDir(ctx, workDir)

	identity := project.Identity(ctx, repo)

	engine := &hooks.Engine{
		Approvals: approvalStore,
		Audit:     auditLog,
		Runner:    wtrexec.NewRunner(),
		Project:   identity,
	}

	state = &app{
		repo:      repo,
		phases:    phases,
		engine:    engine,
		dir:       &directive.Record{},
		commonDir: commonDir,
		recorder:  recorder,
	}

	cmd.SetContext(ctx)
	return nil
}

// mustLoadUserBytes re-reads the user config file's raw bytes for
// ParsePhases and the diagnostic document, since setup discards the
// bytes config.LoadUser returns alongside Config's typed fields.
func mustLoadUserBytes() []byte {
	path, err := config.UserConfigPath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// approvalsPath stores command approvals alongside the user config
// rather than in it (spec §4.D: a separate, frequently-rewritten file
// so approving a command never risks corrupting hand-edited settings).
func approvalsPath(userConfigPath string) string {
	return filepath.Join(filepath.Dir(userConfigPath), "approvals.toml")
}

// Execute runs the root command, writes any accumulated directive, and
// on a -vv failure captures a diagnostic document before exiting.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()

	// Directive emission is gated on --internal (spec §6): without it,
	// a cd/--execute result would otherwise silently vanish into a
	// shell that isn't sourcing wtr's directive file anyway.
	if internalFlag && state != nil && state.dir != nil {
		if writeErr := directive.Write(state.dir); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write directive: %v\n", writeErr)
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if verboseCount >= 2 {
			captureDiagnostic(ctx)
		}
		os.Exit(1)
	}
}

func captureDiagnostic(ctx context.Context) {
	if state == nil {
		return
	}
	var rows []list.Row
	if worktrees, err := state.repo.ListWorktrees(ctx); err == nil {
		rows, _ = list.BuildRows(ctx, state.repo, worktrees, nil)
	}

	vcsVersion := ""
	if out, err := exec.Command("git", "--version").Output(); err == nil {
		vcsVersion = strings.TrimSpace(string(out))
	}

	shellState := "not detected"
	if sh, ok := shellintegration.Current(); ok {
		shellState = string(sh)
	}

	effectiveConfig := string(mustLoadUserBytes())
	if effectiveConfig == "" {
		effectiveConfig = config.DefaultConfig()
	}

	info := diagnostic.Info{
		Timestamp:             time.Now(),
		Command:               strings.Join(os.Args, " "),
		ExitCode:              1,
		ToolVersion:           versionString(),
		VCSVersion:            vcsVersion,
		ShellIntegrationState: shellState,
		Worktrees:             rows,
		EffectiveConfig:       effectiveConfig,
		VerboseLog:            state.recorder.Bytes(),
		RecentCommands:        diagnostic.RecentCommands(state.commonDir),
	}
	if writeErr := diagnostic.Write(state.commonDir, info); writeErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write diagnostic document: %v\n", writeErr)
	} else {
		fmt.Fprintf(os.Stderr, "a diagnostic report was written to %s\n", diagnostic.Path(state.commonDir))
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Show external commands being executed (-vv also captures a diagnostic report on failure)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&yesFlag, "yes", false, "Skip interactive approval prompts")
	rootCmd.PersistentFlags().BoolVar(&internalFlag, "internal", false, "Enable directive emission for the shell wrapper (set automatically by `wtr config shell init`)")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newSwitchCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newApprovalsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}
