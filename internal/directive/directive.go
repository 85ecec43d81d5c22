package directive

import (
	"fmt"
	"os"
	"strings"
)

// EnvVar is the environment variable the shell wrapper sets, pointing at
// a fresh empty file for this invocation. Mirrors internal/exec.DirectiveFileEnvVar.
const EnvVar = "WTR_DIRECTIVE_FILE"

// ExitOverrideVar is the shell variable name Render uses to carry an
// exit-code override through the eval'd directive, since the directive
// text is sourced into the caller's shell where a literal `exit` would
// terminate far more than intended (see Render).
const ExitOverrideVar = "WTR_EXIT_OVERRIDE"

// Record is the per-invocation directive: at most one cd target, at
// most one exec script, and an optional exit-code override (spec §3's
// "Directive record"). It is mutable within the invocation and written
// once at the end.
type Record struct {
	CdTarget     string
	HasCdTarget  bool
	ExecScript   string
	HasExecScript bool
	ExitOverride  *int
}

// SetCd records a directory-change target.
func (r *Record) SetCd(path string) {
	r.CdTarget = path
	r.HasCdTarget = true
}

// SetExec records a follow-up shell script to run after the directive
// is applied (from the tool's --execute/-x flag).
func (r *Record) SetExec(script string) {
	r.ExecScript = script
	r.HasExecScript = true
}

// SetExitOverride records the exit code the wrapper should propagate
// instead of the tool's own, used when --execute's script has its own
// exit status.
func (r *Record) SetExitOverride(code int) {
	r.ExitOverride = &code
}

// Render produces the eval-safe shell fragment for this record. A cd
// line always appears first, single-quoted with the canonical '\''
// escape for embedded quotes; the exec script (if any) follows verbatim
// — it is the user's own shell text, supplied via --execute, not
// something wtr invented, so it is not escaped, only placed after the
// cd so the exec runs in the new directory.
func (r *Record) Render() string {
	var b strings.Builder
	if r.HasCdTarget {
		b.WriteString("cd ")
		b.WriteString(shellQuote(r.CdTarget))
		b.WriteString("\n")
	}
	if r.HasExecScript {
		b.WriteString(r.ExecScript)
		if !strings.HasSuffix(r.ExecScript, "\n") {
			b.WriteString("\n")
		}
	}
	if r.ExitOverride != nil {
		// A bare `exit N` here would terminate the interactive shell
		// this gets eval'd into, not just the wrapper function - so the
		// override is exported as a variable instead, and the shell
		// wrapper (internal/shellintegration) is the one that turns it
		// into its own function's return code after sourcing this file.
		fmt.Fprintf(&b, "%s=%d\n", ExitOverrideVar, *r.ExitOverride)
	}
	return b.String()
}

// shellQuote applies POSIX single-quote escaping: replace each `'` with
// `'\''`. No other metacharacter requires escaping inside a single-quoted
// POSIX string (spec §6).
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Write renders r and writes it to the file named by the EnvVar
// environment variable. If the variable is unset (the tool was invoked
// outside the shell wrapper), Write prints a hint to stderr and returns
// nil without writing anything — no directive is silently lost, but
// none is applied either.
func Write(r *Record) error {
	path := os.Getenv(EnvVar)
	if path == "" {
		if r.HasCdTarget || r.HasExecScript {
			fmt.Fprintln(os.Stderr, "hint: shell integration is not active; run `wtr config shell init <shell>` and add it to your shell config to enable `cd`/`--execute`")
		}
		return nil
	}
	return os.WriteFile(path, []byte(r.Render()), 0600)
}
