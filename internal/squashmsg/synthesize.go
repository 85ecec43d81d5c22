package squashmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wtrexec "github.com/riverhollow/wtr/internal/exec"
)

// Vars carries the context a synthesizer may use to compose a squash
// commit message.
type Vars struct {
	Branch   string
	Target   string
	Repo     string
	Subjects []string
}

// ErrorKind classifies why a configured synthesizer command failed
// (spec §5's distinct llm-failure and timeout error kinds).
type ErrorKind int

const (
	KindLLMFailure ErrorKind = iota
	KindTimeout
)

// SynthesizeError is returned when a configured squash-message command
// fails; it always carries the child's stderr. Grounded on
// internal/vcs.CommandError's shape.
type SynthesizeError struct {
	Kind   ErrorKind
	Stderr string
}

func (e *SynthesizeError) Error() string {
	verb := "failed"
	if e.Kind == KindTimeout {
		verb = "timed out"
	}
	if e.Stderr == "" {
		return fmt.Sprintf("squash message command %s", verb)
	}
	return fmt.Sprintf("squash message command %s: %s", verb, e.Stderr)
}

// synthesizeTimeout bounds how long an external command-based
// synthesizer may run before it is killed and the operation fails. A
// var, not a const, so tests can shrink it rather than sleeping 20s.
var synthesizeTimeout = 20 * time.Second

// Synthesize produces a squash commit message for vars. If command is
// empty, it returns the deterministic Fallback message. Otherwise
// command is run as `sh -c command`, fed the prompt on stdin, and its
// trimmed stdout used verbatim; any failure (nonzero exit, empty
// output, timeout) returns a *SynthesizeError instead of silently
// degrading, so a misconfigured or hung command aborts the squash
// rather than silently substituting a worse message.
func Synthesize(ctx context.Context, runner *wtrexec.Runner, command string, vars Vars) (string, error) {
	if command == "" {
		return Fallback(vars), nil
	}

	prompt := buildPrompt(vars)
	spec := wtrexec.Spec{Name: "sh", Args: []string{"-c", command}}
	result, err := runner.CapturedWithStdin(ctx, spec, synthesizeTimeout, strings.NewReader(prompt))
	if err != nil {
		var timeoutErr *wtrexec.TimeoutError
		kind := KindLLMFailure
		if errors.As(err, &timeoutErr) {
			kind = KindTimeout
		}
		return "", &SynthesizeError{Kind: kind, Stderr: strings.TrimSpace(string(result.Stderr))}
	}
	msg := strings.TrimSpace(string(result.Stdout))
	if msg == "" {
		return "", &SynthesizeError{Kind: KindLLMFailure, Stderr: "command produced no output"}
	}
	return msg, nil
}

func buildPrompt(vars Vars) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a single concise commit message summarizing these commits from %q before they are squashed into %q (repo %s):\n\n", vars.Branch, vars.Target, vars.Repo)
	for _, s := range vars.Subjects {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}

// Fallback deterministically composes a squash commit message with no
// external tool: the first subject as the summary line, followed by a
// bullet list of every subject when there is more than one.
func Fallback(vars Vars) string {
	if len(vars.Subjects) == 0 {
		return fmt.Sprintf("Squash %s into %s", vars.Branch, vars.Target)
	}
	if len(vars.Subjects) == 1 {
		return vars.Subjects[0]
	}

	var b strings.Builder
	b.WriteString(vars.Subjects[0])
	b.WriteString("\n\n")
	for _, s := range vars.Subjects {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
