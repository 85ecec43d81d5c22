package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxFileSize triggers rotation (spec §4.J: "over 1 MB").
const maxFileSize = 1 << 20

// maxCommandLength truncates the recorded command string, replacing the
// remainder with a single ellipsis character (spec §4.J).
const maxCommandLength = 2000

// Entry is one command-audit record (spec §3's "Command-audit entry").
type Entry struct {
	Timestamp      time.Time `json:"timestamp"`
	InvocationID   string    `json:"invocation_id"`
	InvocationLabel string   `json:"invocation_label"`
	HookLabel      string    `json:"hook_label,omitempty"`
	Command        string    `json:"command_string"`
	ExitCode       *int      `json:"exit_code"`
	DurationMs     *int64    `json:"duration_ms"`
}

// Log is a process-wide, mutex-guarded JSONL appender rooted at one
// file path. Grounded on the teacher's internal/cache atomic-write idiom,
// adapted here to append rather than rewrite wholesale (audit entries
// must survive across many invocations, not be replaced each time).
type Log struct {
	path string
	mu   sync.Mutex
}

// Open returns a Log appending to <commonDir>/wt-logs/commands.jsonl,
// creating the directory if needed.
func Open(commonDir string) (*Log, error) {
	dir := filepath.Join(commonDir, "wt-logs")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("audit: failed to create log dir: %w", err)
	}
	return &Log{path: filepath.Join(dir, "commands.jsonl")}, nil
}

// processInvocationID is generated once per process.
var processInvocationID = uuid.NewString()

// NewInvocationID returns this process's invocation ID, shared by every
// entry this process appends, so concurrent wtr invocations never
// collide on a label.
func NewInvocationID() string {
	return processInvocationID
}

func truncateCommand(s string) string {
	r := []rune(s)
	if len(r) <= maxCommandLength {
		return s
	}
	return string(r[:maxCommandLength]) + "…"
}

// Append writes one entry as a single line, rotating the file first if
// it has grown past maxFileSize. The write is a single buffered append
// guarded by l.mu, so lines never interleave.
func (l *Log) Append(e Entry) error {
	e.Command = truncateCommand(e.Command)

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if info, statErr := os.Stat(l.path); statErr == nil && info.Size() > maxFileSize {
		oldPath := l.path + ".old"
		if err := os.Rename(l.path, oldPath); err != nil {
			return fmt.Errorf("audit: failed to rotate log: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("audit: failed to open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("audit: failed to append entry: %w", err)
	}
	return nil
}

// Tail returns up to n of the most recent entries in the log, oldest
// first. It is used by the diagnostic document's "recent commands"
// section, so a bug report carries the tail of command history without
// the reporter having to dig out commands.jsonl themselves. A missing
// log file yields an empty slice rather than an error, since a process
// may capture diagnostics before any command has ever been logged.
func (l *Log) Tail(n int) ([]Entry, error) {
	return TailFile(l.path, n)
}

// TailFile reads up to n of the most recent entries from a commands.jsonl
// file at path, oldest first. Malformed lines are skipped rather than
// failing the whole read, since a half-written line from a rotation race
// should not hide the rest of the history.
func TailFile(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: failed to open log: %w", err)
	}
	defer f.Close()

	ring := make([]Entry, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to read log: %w", err)
	}
	return ring, nil
}
