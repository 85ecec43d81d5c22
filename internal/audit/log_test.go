package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines = append(lines, scanner.Text())
		}
	}
	return lines
}

func TestAppendWritesOneLinePerEntry(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := l.Append(Entry{Command: "echo hi"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	lines := readLines(t, filepath.Join(dir, "wt-logs", "commands.jsonl"))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var entry Entry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Command != "echo hi" {
		t.Errorf("unexpected command: %q", entry.Command)
	}
}

func TestAppendTruncatesLongCommands(t *testing.T) {
	dir := t.TempDir()
	l, _ := Open(dir)

	longCmd := strings.Repeat("x", maxCommandLength+500)
	if err := l.Append(Entry{Command: longCmd}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "wt-logs", "commands.jsonl"))
	var entry Entry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasSuffix(entry.Command, "…") {
		t.Errorf("expected ellipsis-truncated command, got suffix %q", entry.Command[len(entry.Command)-10:])
	}
	if len([]rune(entry.Command)) != maxCommandLength+1 {
		t.Errorf("expected truncated length %d, got %d", maxCommandLength+1, len([]rune(entry.Command)))
	}
}

// TestRotationNeverLosesAnEntry is spec invariant 5: the .old file plus
// the fresh file together contain every entry observed before rotation.
func TestRotationNeverLosesAnEntry(t *testing.T) {
	dir := t.TempDir()
	l, _ := Open(dir)

	// Write enough ~219-byte entries to cross the 1MB rotation bound
	// exactly once (about 4,790 entries fill 1MB); a second rotation
	// would clobber .old by design.
	total := 0
	for i := 0; i < 6000; i++ {
		cmd := strings.Repeat("a", 80)
		if err := l.Append(Entry{Command: cmd, InvocationID: "fixed"}); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
		total++
	}

	logsDir := filepath.Join(dir, "wt-logs")
	currentLines := readLines(t, filepath.Join(logsDir, "commands.jsonl"))

	oldPath := filepath.Join(logsDir, "commands.jsonl.old")
	var oldLines []string
	if _, err := os.Stat(oldPath); err == nil {
		oldLines = readLines(t, oldPath)
	} else {
		t.Fatal("expected rotation to have occurred, but no .old file exists")
	}

	if got := len(oldLines) + len(currentLines); got != total {
		t.Errorf("expected %d total entries across .old+current, got %d (old=%d current=%d)",
			total, got, len(oldLines), len(currentLines))
	}
}

func TestTailReturnsMostRecentEntriesInOrder(t *testing.T) {
	dir := t.TempDir()
	l, _ := Open(dir)

	for i := 0; i < 5; i++ {
		if err := l.Append(Entry{Command: strings.Repeat("x", i+1)}); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	entries, err := l.Tail(3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"xxx", "xxxx", "xxxxx"}
	for i, e := range entries {
		if e.Command != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, e.Command, want[i])
		}
	}
}

func TestTailOnMissingLogReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	entries, err := TailFile(filepath.Join(dir, "wt-logs", "commands.jsonl"), 5)
	if err != nil {
		t.Fatalf("TailFile: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries for a missing log, got %d", len(entries))
	}
}
