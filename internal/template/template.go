package template

import (
	"regexp"
	"runtime"
	"strings"
)

// Mode selects how a substituted variable's value is rendered.
type Mode int

const (
	// ShellEscaped wraps each value so it is safe to embed in a POSIX
	// shell command string (or the platform-appropriate shell on
	// Windows). Use this whenever the expansion will be handed to a
	// shell.
	ShellEscaped Mode = iota
	// Literal performs no escaping at all. Use this only when building
	// a filesystem path from the worktree-path template — never for
	// shell command strings.
	Literal
)

// Vars holds the fixed variable set recognized by Expand (spec §4.C —
// exactly these six, nothing more).
type Vars struct {
	Branch            string
	Repo              string
	Worktree          string
	MainWorktree      string
	MainWorktreePath  string // alias of MainWorktree
	Target            string
}

func (v Vars) lookup(name string) (string, bool) {
	switch name {
	case "branch":
		return v.Branch, true
	case "repo":
		return v.Repo, true
	case "worktree":
		return v.Worktree, true
	case "main_worktree":
		return v.MainWorktree, true
	case "main_worktree_path":
		if v.MainWorktreePath != "" {
			return v.MainWorktreePath, true
		}
		return v.MainWorktree, true
	case "target":
		return v.Target, true
	default:
		return "", false
	}
}

// placeholderRegex matches {{ name }} or {{ name | sanitize }}, tolerant
// of surrounding whitespace. The template's own meta-syntax is fixed and
// small by design (spec §4.C) — no code evaluation, no user-defined
// filters.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:\|\s*(sanitize)\s*)?\}\}`)

// Expand renders tmpl against vars in the given mode. Undefined
// variables (not in the fixed set) render as the empty string.
func Expand(tmpl string, vars Vars, mode Mode) string {
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		name := sub[1]
		filter := sub[2]

		value, _ := vars.lookup(name)
		if filter == "sanitize" {
			value = Sanitize(value)
		}

		if mode == Literal {
			return value
		}
		return Escape(value)
	})
}

// sanitizeChars are replaced with "-" by the sanitize filter — the set
// of characters unsafe in filesystem path segments across POSIX and
// Windows (spec §4.C).
const sanitizeChars = `/\:<>|?*"`

// Sanitize replaces each character in sanitizeChars with "-", making a
// branch name safe to use as a filesystem path segment or log filename.
// Idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(sanitizeChars, r) {
			b.WriteByte('-')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// reservedWindowsNames are device names that cannot be used as a file
// stem on Windows regardless of extension.
var reservedWindowsNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// SanitizeFilename applies Sanitize and additionally prefixes names that
// collide with a Windows reserved device name with "_" (spec §6's
// detached-hook log filenames: "<branch>-<label>.log").
func SanitizeFilename(s string) string {
	clean := Sanitize(s)
	if reservedWindowsNames[strings.ToLower(clean)] {
		return "_" + clean
	}
	return clean
}

// Escape wraps s for safe embedding as a single shell argument. On POSIX
// this is single-quote escaping with the canonical '\'' substitution for
// embedded single quotes; on Windows it uses double-quote escaping
// appropriate for PowerShell's default shell.
func Escape(s string) string {
	if runtime.GOOS == "windows" {
		return escapeWindows(s)
	}
	return escapePOSIX(s)
}

func escapePOSIX(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// escapeWindows double-quote-escapes s for PowerShell: backtick-escape
// embedded double quotes and backticks, then wrap in double quotes.
func escapeWindows(s string) string {
	escaped := strings.ReplaceAll(s, "`", "``")
	escaped = strings.ReplaceAll(escaped, `"`, "`\"")
	return `"` + escaped + `"`
}
