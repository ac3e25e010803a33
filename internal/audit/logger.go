// Package audit provides append-only audit logging for merge coordination.
//
// Every batch merge and individual attempt is recorded as one JSON object
// per line, so the log can be tailed, grepped, and replayed by tooling. The
// log rotates by size like the debug log, so long-lived repositories do not
// accumulate an unbounded audit trail. The log is advisory: recording
// failures are surfaced to the caller but the coordinator treats them as
// best effort.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/merge"
)

const (
	// localStateDirName is the relative path for transient omc state.
	localStateDirName = ".omc"
	// auditLogFileName is the filename used for audit logging.
	auditLogFileName = "audit.log"
	// auditLogFileMode defines the permissions for the audit log file.
	auditLogFileMode = 0o644
	// auditLogDirMode defines the permissions for the audit log directory.
	auditLogDirMode = 0o755
)

const (
	// EventMergeAttempt records one merge attempt of a worker branch.
	EventMergeAttempt = "merge.attempt"
	// EventBatchStart records the start of a team batch merge.
	EventBatchStart = "batch.start"
	// EventBatchComplete records the end of a team batch merge.
	EventBatchComplete = "batch.complete"
	// EventWorktreeCreate records worker worktree creation.
	EventWorktreeCreate = "worktree.create"
	// EventWorktreeRemove records worker worktree removal.
	EventWorktreeRemove = "worktree.remove"
)

// Entry is one audit log line.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Event     string    `json:"event"`
	Team      string    `json:"team,omitempty"`
	Detail    any       `json:"detail,omitempty"`
}

// batchStartDetail describes a starting batch merge.
type batchStartDetail struct {
	BaseBranch  string `json:"base_branch"`
	WorkerCount int    `json:"worker_count"`
}

// batchCompleteDetail describes a finished batch merge.
type batchCompleteDetail struct {
	Merged int  `json:"merged"`
	Halted bool `json:"halted"`
}

// worktreeDetail describes a worktree lifecycle event.
type worktreeDetail struct {
	Worker string `json:"worker"`
	Branch string `json:"branch"`
	Path   string `json:"path"`
}

// Logger appends audit entries to a size-rotated log file. The file is
// opened lazily on the first write, so constructing a Logger for a disabled
// or never-used audit trail touches nothing on disk.
type Logger struct {
	path     string
	warnings io.Writer
	rotation logging.RotationConfig
	now      func() time.Time

	mu     sync.Mutex
	writer *logging.RotatingWriter
}

// NewLogger builds an audit logger rooted at the provided repository.
// rotation caps the log's size; a zero MaxSizeMB disables rotation and the
// log grows as a plain append-only file.
func NewLogger(repoRoot string, warnings io.Writer, rotation logging.RotationConfig) (*Logger, error) {
	if repoRoot == "" {
		return nil, errors.New("repo root is required")
	}
	if warnings == nil {
		warnings = os.Stderr
	}
	return &Logger{
		path:     filepath.Join(repoRoot, localStateDirName, auditLogFileName),
		warnings: warnings,
		rotation: rotation,
		now:      time.Now,
	}, nil
}

// Path returns the audit log location.
func (logger *Logger) Path() string {
	return logger.path
}

// Log writes a generic audit entry to the log file.
func (logger *Logger) Log(entry Entry) error {
	if logger == nil {
		return errors.New("audit logger is nil")
	}
	if entry.Event == "" {
		return errors.New("event is required")
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	now := logger.now
	if now == nil {
		now = time.Now
	}
	entry.Timestamp = now().UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		logger.warnf("audit log entry rejected: %v", err)
		return err
	}

	if logger.writer == nil {
		exists, err := fileExists(logger.path)
		if err != nil {
			logger.warnf("audit log check failed for %s: %v", logger.path, err)
			return err
		}
		if !exists {
			logger.warnf("audit log missing at %s; creating new file", logger.path)
		}
	}

	if err := logger.appendLine(line); err != nil {
		logger.warnf("audit log write failed for %s: %v", logger.path, err)
		return err
	}
	return nil
}

// RecordMergeAttempt records the outcome of one merge attempt.
func (logger *Logger) RecordMergeAttempt(teamName string, result merge.AttemptResult) error {
	return logger.Log(Entry{
		Event:  EventMergeAttempt,
		Team:   teamName,
		Detail: result,
	})
}

// RecordBatchStart records the start of a team batch merge.
func (logger *Logger) RecordBatchStart(teamName, baseBranch string, workerCount int) error {
	return logger.Log(Entry{
		Event: EventBatchStart,
		Team:  teamName,
		Detail: batchStartDetail{
			BaseBranch:  baseBranch,
			WorkerCount: workerCount,
		},
	})
}

// RecordBatchComplete records the end of a team batch merge. halted reports
// whether the batch stopped at a failing attempt.
func (logger *Logger) RecordBatchComplete(teamName string, merged int, halted bool) error {
	return logger.Log(Entry{
		Event: EventBatchComplete,
		Team:  teamName,
		Detail: batchCompleteDetail{
			Merged: merged,
			Halted: halted,
		},
	})
}

// RecordWorktreeCreate records worker worktree creation.
func (logger *Logger) RecordWorktreeCreate(teamName, worker, branch, path string) error {
	return logger.Log(Entry{
		Event: EventWorktreeCreate,
		Team:  teamName,
		Detail: worktreeDetail{
			Worker: worker,
			Branch: branch,
			Path:   path,
		},
	})
}

// RecordWorktreeRemove records worker worktree removal.
func (logger *Logger) RecordWorktreeRemove(teamName, worker, branch, path string) error {
	return logger.Log(Entry{
		Event: EventWorktreeRemove,
		Team:  teamName,
		Detail: worktreeDetail{
			Worker: worker,
			Branch: branch,
			Path:   path,
		},
	})
}

// appendLine writes one newline-terminated entry through the rotating
// writer, opening it on first use. The caller must hold the mutex.
func (logger *Logger) appendLine(line []byte) error {
	if logger.writer == nil {
		writer, err := logging.NewRotatingWriter(logger.path, logger.rotation)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		logger.writer = writer
	}

	if _, err := logger.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying log file. A Logger that never
// wrote an entry closes as a no-op.
func (logger *Logger) Close() error {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	if logger.writer == nil {
		return nil
	}
	err := logger.writer.Close()
	logger.writer = nil
	return err
}

func (logger *Logger) warnf(format string, args ...any) {
	if logger.warnings == nil {
		return
	}
	fmt.Fprintf(logger.warnings, "WARN "+format+"\n", args...)
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Ensure the audit logger can serve as the coordinator's auditor.
var _ merge.Auditor = (*Logger)(nil)
