// Tests for the audit logger.
package audit

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/merge"
)

func fixedClock() func() time.Time {
	fixed := time.Date(2026, 8, 30, 19, 2, 11, 0, time.UTC)
	return func() time.Time { return fixed }
}

// TestLoggerWritesEntries ensures audit entries are written in order.
func TestLoggerWritesEntries(t *testing.T) {
	repoRoot := t.TempDir()
	logPath := filepath.Join(repoRoot, localStateDirName, auditLogFileName)
	if err := os.MkdirAll(filepath.Dir(logPath), auditLogDirMode); err != nil {
		t.Fatalf("create audit log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte(""), auditLogFileMode); err != nil {
		t.Fatalf("create audit log file: %v", err)
	}

	var warnings bytes.Buffer
	logger, err := NewLogger(repoRoot, &warnings, logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.now = fixedClock()

	if err := logger.RecordBatchStart("core", "main", 2); err != nil {
		t.Fatalf("record batch start: %v", err)
	}
	if err := logger.RecordMergeAttempt("core", merge.AttemptResult{
		WorkerName:  "alice",
		Branch:      "omc/core/alice",
		Success:     true,
		MergeCommit: "abc123",
	}); err != nil {
		t.Fatalf("record merge attempt: %v", err)
	}

	if warnings.Len() != 0 {
		t.Fatalf("expected no warnings, got %q", warnings.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit log lines, got %d", len(lines))
	}

	var first Entry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first.Event != EventBatchStart || first.Team != "core" {
		t.Errorf("first entry = %+v, want %s for core", first, EventBatchStart)
	}
	if !first.Timestamp.Equal(time.Date(2026, 8, 30, 19, 2, 11, 0, time.UTC)) {
		t.Errorf("first entry ts = %v", first.Timestamp)
	}

	var second struct {
		Event  string              `json:"event"`
		Team   string              `json:"team"`
		Detail merge.AttemptResult `json:"detail"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not valid JSON: %v", err)
	}
	if second.Event != EventMergeAttempt {
		t.Errorf("second entry event = %q", second.Event)
	}
	if second.Detail.WorkerName != "alice" || !second.Detail.Success || second.Detail.MergeCommit != "abc123" {
		t.Errorf("second entry detail = %+v", second.Detail)
	}
}

// TestLoggerMissingFileCreatesAndWarns ensures a missing audit log is
// recreated with a warning.
func TestLoggerMissingFileCreatesAndWarns(t *testing.T) {
	repoRoot := t.TempDir()

	var warnings bytes.Buffer
	logger, err := NewLogger(repoRoot, &warnings, logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.now = fixedClock()

	if err := logger.RecordWorktreeCreate("core", "alice", "omc/core/alice", ".omc/worktrees/core/alice"); err != nil {
		t.Fatalf("record worktree create: %v", err)
	}

	if !strings.Contains(warnings.String(), "audit log missing") {
		t.Errorf("expected missing-file warning, got %q", warnings.String())
	}
	if _, err := os.Stat(logger.Path()); err != nil {
		t.Errorf("audit log was not created: %v", err)
	}
}

// TestLoggerRejectsEmptyEvent ensures entries without an event name fail.
func TestLoggerRejectsEmptyEvent(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), io.Discard, logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if err := logger.Log(Entry{Team: "core"}); err == nil {
		t.Fatal("expected error for empty event")
	}
}

// TestLoggerRequiresRepoRoot ensures construction fails without a root.
func TestLoggerRequiresRepoRoot(t *testing.T) {
	if _, err := NewLogger("", nil, logging.DefaultRotationConfig()); err == nil {
		t.Fatal("expected error for empty repo root")
	}
}

// TestLoggerAppendsAcrossInstances ensures separate loggers append to the
// same file rather than truncating it.
func TestLoggerAppendsAcrossInstances(t *testing.T) {
	repoRoot := t.TempDir()

	first, err := NewLogger(repoRoot, io.Discard, logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if err := first.RecordBatchStart("core", "main", 1); err != nil {
		t.Fatalf("record: %v", err)
	}

	second, err := NewLogger(repoRoot, io.Discard, logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if err := second.RecordBatchComplete("core", 1, false); err != nil {
		t.Fatalf("record: %v", err)
	}

	data, err := os.ReadFile(first.Path())
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

// TestLoggerRotatesWhenOversized ensures the audit log is rotated instead
// of growing without bound.
func TestLoggerRotatesWhenOversized(t *testing.T) {
	repoRoot := t.TempDir()

	logger, err := NewLogger(repoRoot, io.Discard, logging.RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()

	// Each entry carries a 64KiB detail, so 20 entries push past 1MiB.
	detail := strings.Repeat("x", 64*1024)
	for i := 0; i < 20; i++ {
		if err := logger.Log(Entry{Event: EventMergeAttempt, Team: "core", Detail: detail}); err != nil {
			t.Fatalf("log entry %d: %v", i, err)
		}
	}

	if _, err := os.Stat(logger.Path() + ".1"); err != nil {
		t.Errorf("expected rotated backup after oversized writes: %v", err)
	}
	info, err := os.Stat(logger.Path())
	if err != nil {
		t.Fatalf("stat audit log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Errorf("audit log exceeds limit after rotation: %d bytes", info.Size())
	}
}
