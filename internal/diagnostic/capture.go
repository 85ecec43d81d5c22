package diagnostic

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/colorprofile"

	"github.com/riverhollow/wtr/internal/audit"
	"github.com/riverhollow/wtr/internal/list"
)

// recentCommandCount bounds the "recent commands" section pulled from
// the audit log, matching the short tail a bug report actually needs
// rather than dumping the whole history into the document.
const recentCommandCount = 20

// Info is the environment and outcome summary captured alongside the
// verbose log.
type Info struct {
	Timestamp             time.Time
	Command               string
	ExitCode              int
	ToolVersion           string
	VCSVersion            string
	ShellIntegrationState string
	Worktrees             []list.Row
	EffectiveConfig       string
	VerboseLog            []byte
	RecentCommands        []audit.Entry
}

// Dir returns the diagnostic directory under commonGitDir.
func Dir(commonGitDir string) string {
	return filepath.Join(commonGitDir, "wt-logs")
}

// Path returns the fixed diagnostic document path; each capture
// overwrites the previous one, matching the spec's single well-known
// location for "paste this into the issue" workflows.
func Path(commonGitDir string) string {
	return filepath.Join(Dir(commonGitDir), "diagnostic.md")
}

// RecentCommands reads the tail of the command-audit log for inclusion
// in a diagnostic document. It never fails the capture: a caller with
// no audit log yet (or a transient read error) still gets a document,
// just without the recent-commands section populated.
func RecentCommands(commonGitDir string) []audit.Entry {
	path := filepath.Join(commonGitDir, "wt-logs", "commands.jsonl")
	entries, err := audit.TailFile(path, recentCommandCount)
	if err != nil {
		return nil
	}
	return entries
}

// Write strips ANSI from info.VerboseLog and renders the Markdown
// diagnostic document to <common-git-dir>/wt-logs/diagnostic.md, atomically
// (temp file + rename, the same idiom used by cicache and the teacher's
// internal/cache).
func Write(commonGitDir string, info Info) error {
	dir := Dir(commonGitDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create diagnostic dir: %w", err)
	}

	doc := render(info)

	path := Path(commonGitDir)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("write diagnostic doc: %w", err)
	}
	return os.Rename(tempPath, path)
}

func render(info Info) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Diagnostic report\n\n")
	fmt.Fprintf(&b, "- Time: %s\n", info.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Command: `%s`\n", info.Command)
	fmt.Fprintf(&b, "- Exit code: %d\n", info.ExitCode)
	fmt.Fprintf(&b, "- Tool version: %s\n", nonEmpty(info.ToolVersion))
	fmt.Fprintf(&b, "- VCS version: %s\n", nonEmpty(info.VCSVersion))
	fmt.Fprintf(&b, "- Shell integration: %s\n\n", nonEmpty(info.ShellIntegrationState))

	fmt.Fprintf(&b, "## Worktrees\n\n")
	if len(info.Worktrees) == 0 {
		fmt.Fprintf(&b, "(none)\n\n")
	} else {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(list.TableHeaders, " | "))
		fmt.Fprintf(&b, "|%s|\n", strings.Repeat("---|", len(list.TableHeaders)))
		for _, row := range info.Worktrees {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(list.TableRow(row), " | "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Effective config\n\n```toml\n%s\n```\n\n", strings.TrimSpace(info.EffectiveConfig))

	fmt.Fprintf(&b, "## Recent commands\n\n")
	if len(info.RecentCommands) == 0 {
		fmt.Fprintf(&b, "(none)\n\n")
	} else {
		for _, e := range info.RecentCommands {
			status := "?"
			if e.ExitCode != nil {
				status = fmt.Sprintf("%d", *e.ExitCode)
			}
			fmt.Fprintf(&b, "- `%s` (exit %s)\n", e.Command, status)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Verbose log\n\n```\n%s\n```\n", strings.TrimRight(stripANSI(info.VerboseLog), "\n"))

	return b.String()
}

// stripANSI downgrades info.VerboseLog through colorprofile's NoTTY
// profile, which strips every SGR/cursor escape sequence it recognizes,
// so the resulting text pastes cleanly into a plain-text issue tracker.
func stripANSI(log []byte) string {
	var out bytes.Buffer
	w := &colorprofile.Writer{Forward: &out, Profile: colorprofile.NoTTY}
	_, _ = w.Write(log)
	return out.String()
}

func nonEmpty(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
