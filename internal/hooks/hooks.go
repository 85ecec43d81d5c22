package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/riverhollow/wtr/internal/approval"
	"github.com/riverhollow/wtr/internal/audit"
	wtrexec "github.com/riverhollow/wtr/internal/exec"
	"github.com/riverhollow/wtr/internal/template"
	"github.com/riverhollow/wtr/internal/ui/prompt"
)

// RunOptions configures one RunPhase/ApproveAtGate invocation.
type RunOptions struct {
	// Yes skips interactive approval (equivalent to --yes); unapproved
	// commands are approved and persisted without a prompt.
	Yes bool
	// Force bypasses the approval store entirely (neither consulted nor
	// written — spec §9's "Open question", decided as not-persisted).
	Force bool
	// Names restricts execution to these command names within the
	// phase (used by `wtr hook <phase> <name>...`); empty runs all.
	Names []string
	// LogDir is the directory detached commands' log files are written
	// under (spec §6: "<common-git-dir>/wt-logs/<branch>-<label>.log").
	LogDir string
}

// Engine executes hook phases per spec §4.E.
type Engine struct {
	Approvals *approval.Store
	Audit     *audit.Log
	Runner    *wtrexec.Runner
	Project   string // project identity, for approval-store scoping

	// IsTTY lets tests substitute the TTY check; nil means check the
	// real os.Stdin.
	IsTTY func() bool
}

func (e *Engine) isInteractive() bool {
	if e.IsTTY != nil {
		return e.IsTTY()
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// renderedCommand is a Command with its phase-time expansion already
// computed; the hook engine's one invariant is that this exact string
// is what both the approval check and the execution see (spec §3).
type renderedCommand struct {
	Command
	Expansion string
}

func render(cmds []Command, vars template.Vars, names []string) []renderedCommand {
	filter := make(map[string]bool, len(names))
	for _, n := range names {
		filter[n] = true
	}
	var out []renderedCommand
	for _, c := range cmds {
		if len(names) > 0 && !filter[c.Name] {
			continue
		}
		out = append(out, renderedCommand{
			Command:   c,
			Expansion: template.Expand(c.Template, vars, template.ShellEscaped),
		})
	}
	return out
}

// RunPhase executes every command configured for phase against vars,
// gating on approval and dispatching under the phase's discipline.
func (e *Engine) RunPhase(ctx context.Context, phase Phase, cmds []Command, vars template.Vars, opts RunOptions) error {
	behavior, known := phaseDispatch[phase]
	if !known {
		return fmt.Errorf("hooks: unknown phase %q", phase)
	}

	rendered := render(cmds, vars, opts.Names)
	if len(rendered) == 0 {
		return nil
	}

	if err := e.gate(rendered, opts); err != nil {
		return err
	}

	for _, rc := range rendered {
		err := e.dispatch(ctx, phase, behavior, rc, vars, opts)
		if err != nil {
			if behavior.FailStrategy == FailFast {
				return fmt.Errorf("hook %q (phase %s) failed: %w", labelFor(rc), phase, err)
			}
			fmt.Fprintf(os.Stderr, "warning: hook %q (phase %s) failed: %v\n", labelFor(rc), phase, err)
		}
	}
	return nil
}

// ApproveAtGate approves (but does not execute) every command across
// the given phase sets up front, before any VCS mutation — spec §4.H's
// "approve at the gate" for composite operations (merge, remove).
func (e *Engine) ApproveAtGate(phases map[Phase][]Command, vars template.Vars, opts RunOptions) error {
	var all []renderedCommand
	for _, phase := range AllPhases {
		cmds, ok := phases[phase]
		if !ok {
			continue
		}
		all = append(all, render(cmds, vars, nil)...)
	}
	if len(all) == 0 {
		return nil
	}
	return e.gate(all, opts)
}

// gate partitions rendered into approved/unapproved and, if anything is
// unapproved, prompts (or fails non-interactively) before returning.
func (e *Engine) gate(rendered []renderedCommand, opts RunOptions) error {
	if opts.Force {
		return nil
	}

	var unapproved []renderedCommand
	for _, rc := range rendered {
		if !e.Approvals.IsApproved(e.Project, rc.Template) {
			unapproved = append(unapproved, rc)
		}
	}
	if len(unapproved) == 0 {
		return nil
	}

	if !opts.Yes {
		if !e.isInteractive() {
			return fmt.Errorf("%d command(s) require approval and this session is non-interactive: rerun with --yes, or run `wtr approvals add`", len(unapproved))
		}
		fmt.Fprintln(os.Stderr, "The following commands require approval:")
		for _, rc := range unapproved {
			fmt.Fprintf(os.Stderr, "  %s\n", rc.Expansion)
		}
		result, err := prompt.Confirm("Run these commands?")
		if err != nil {
			return fmt.Errorf("approval prompt failed: %w", err)
		}
		if !result.Confirmed {
			fmt.Fprintln(os.Stderr, "approval declined; phase skipped")
			return errDeclined
		}
	}

	templates := make([]string, len(unapproved))
	for i, rc := range unapproved {
		templates[i] = rc.Template
	}
	return e.Approvals.ApproveAll(templates, e.Project)
}

// errDeclined signals the phase was skipped by explicit user choice,
// not a failure — callers treat it as "do nothing, exit 0".
var errDeclined = fmt.Errorf("hook approval declined")

// IsDeclined reports whether err is the sentinel returned when the user
// declines a batch approval prompt.
func IsDeclined(err error) bool { return err == errDeclined }

func labelFor(rc renderedCommand) string {
	if rc.Name != "" {
		return rc.Name
	}
	return rc.Template
}

func (e *Engine) dispatch(ctx context.Context, phase Phase, behavior phaseBehavior, rc renderedCommand, vars template.Vars, opts RunOptions) error {
	start := time.Now()
	var exitCode *int
	var durationMs *int64
	var runErr error

	switch behavior.Discipline {
	case Foreground:
		spec := wtrexec.Spec{Dir: vars.Worktree, Name: "sh", Args: []string{"-c", rc.Expansion}}
		runErr = e.Runner.Foreground(ctx, spec)
		code := 0
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		exitCode = &code
		duration := time.Since(start).Milliseconds()
		durationMs = &duration
	case Detached:
		logPath := e.logFilePath(opts, vars, rc)
		f, openErr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if openErr != nil {
			return fmt.Errorf("failed to open hook log %s: %w", logPath, openErr)
		}
		defer f.Close()
		spec := wtrexec.Spec{Dir: vars.Worktree, Name: "sh", Args: []string{"-c", rc.Expansion}}
		runErr = e.Runner.Detached(ctx, spec, io.Writer(f), time.Second)
		// Background commands record null exit and duration: we hand off
		// to the detached process and never observe its completion.
	}

	if e.Audit != nil {
		e.Audit.Append(audit.Entry{
			Timestamp:       time.Now(),
			InvocationID:    audit.NewInvocationID(),
			InvocationLabel: string(phase),
			HookLabel:       labelFor(rc),
			Command:         rc.Expansion,
			ExitCode:        exitCode,
			DurationMs:      durationMs,
		})
	}

	return runErr
}

func (e *Engine) logFilePath(opts RunOptions, vars template.Vars, rc renderedCommand) string {
	branch := template.SanitizeFilename(vars.Branch)
	label := template.SanitizeFilename(labelFor(rc))
	return filepath.Join(opts.LogDir, fmt.Sprintf("%s-%s.log", branch, label))
}
