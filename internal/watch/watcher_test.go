package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

func TestWatcher_NewAndStop(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	w.Start()
	time.Sleep(10 * time.Millisecond)
	w.Stop()
}

func TestWatcher_AddWorker(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpDir := t.TempDir()
	w.Start()

	if err := w.AddWorker("alice", tmpDir); err != nil {
		t.Fatalf("Failed to add worker: %v", err)
	}
}

func TestWatcher_AddWorker_NonExistentPath(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	w.Start()

	nonExistentPath := filepath.Join(t.TempDir(), "this-path-does-not-exist")
	err = w.AddWorker("alice", nonExistentPath)
	if err == nil {
		t.Fatal("Expected error when adding worker with non-existent path")
	}
	if !strings.Contains(err.Error(), "worktree path does not exist") {
		t.Errorf("Error message %q should mention the missing path", err.Error())
	}
}

func TestWatcher_AddWorker_PathIsFile(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpFile := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(tmpFile, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	w.Start()

	err = w.AddWorker("alice", tmpFile)
	if err == nil {
		t.Fatal("Expected error when adding worker with file path instead of directory")
	}
	if !strings.Contains(err.Error(), "worktree path is not a directory") {
		t.Errorf("Error message %q should mention the non-directory path", err.Error())
	}
}

func TestWatcher_AddWorktrees(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	entries := []worktree.Entry{
		{Branch: "omc/core/alice", WorkerName: "alice", Path: t.TempDir()},
		{Branch: "omc/core/bob", WorkerName: "bob", Path: t.TempDir()},
	}

	w.Start()

	if err := w.AddWorktrees(entries); err != nil {
		t.Fatalf("Failed to add worktrees: %v", err)
	}
}

func TestWatcher_DetectsOverlap(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()

	w.Start()

	if err := w.AddWorker("alice", tmpDir1); err != nil {
		t.Fatalf("Failed to add worker alice: %v", err)
	}
	if err := w.AddWorker("bob", tmpDir2); err != nil {
		t.Fatalf("Failed to add worker bob: %v", err)
	}

	// Initially no overlaps
	if w.HasOverlaps() {
		t.Error("Expected no overlaps initially")
	}

	// Write the same relative file in both worktrees
	testFile := "test.txt"
	if err := os.WriteFile(filepath.Join(tmpDir1, testFile), []byte("content1"), 0644); err != nil {
		t.Fatalf("Failed to write file 1: %v", err)
	}

	// Wait for fsnotify event + debounce
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(tmpDir2, testFile), []byte("content2"), 0644); err != nil {
		t.Fatalf("Failed to write file 2: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if !w.HasOverlaps() {
		t.Fatal("Expected overlap after both workers modified same file")
	}

	overlaps := w.Overlaps()
	if len(overlaps) != 1 {
		t.Fatalf("Expected 1 overlap, got %d", len(overlaps))
	}
	if overlaps[0].RelativePath != testFile {
		t.Errorf("Expected overlap on %s, got %s", testFile, overlaps[0].RelativePath)
	}
	if len(overlaps[0].Workers) != 2 {
		t.Errorf("Expected 2 workers in overlap, got %d", len(overlaps[0].Workers))
	}
}

func TestWatcher_FilesModifiedByWorker(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpDir := t.TempDir()
	w.Start()

	if err := w.AddWorker("alice", tmpDir); err != nil {
		t.Fatalf("Failed to add worker: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "modified.txt"), []byte("content"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	files := w.FilesModifiedByWorker("alice")
	if len(files) != 1 {
		t.Fatalf("Expected 1 file modified, got %d", len(files))
	}
	if files[0] != "modified.txt" {
		t.Errorf("Expected modified.txt, got %s", files[0])
	}
}

func TestWatcher_RemoveWorker(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()

	w.Start()

	_ = w.AddWorker("alice", tmpDir1)
	_ = w.AddWorker("bob", tmpDir2)

	// Create an overlap
	testFile := "overlap.txt"
	_ = os.WriteFile(filepath.Join(tmpDir1, testFile), []byte("1"), 0644)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(tmpDir2, testFile), []byte("2"), 0644)
	time.Sleep(200 * time.Millisecond)

	if !w.HasOverlaps() {
		t.Fatal("Expected overlap before removal")
	}

	// Removing one worker resolves the overlap
	w.RemoveWorker("bob")

	if w.HasOverlaps() {
		t.Error("Expected no overlap after removing worker")
	}
}

func TestWatcher_IgnoredDirectories(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	for _, dir := range []string{tmpDir1, tmpDir2} {
		if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
			t.Fatalf("Failed to create .git dir: %v", err)
		}
	}

	w.Start()

	_ = w.AddWorker("alice", tmpDir1)
	_ = w.AddWorker("bob", tmpDir2)

	// Writes inside an ignored directory must not produce overlaps.
	_ = os.WriteFile(filepath.Join(tmpDir1, ".git", "index"), []byte("1"), 0644)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(tmpDir2, ".git", "index"), []byte("2"), 0644)
	time.Sleep(200 * time.Millisecond)

	if w.HasOverlaps() {
		t.Errorf("Expected no overlaps for ignored directories, got %v", w.Overlaps())
	}
}

func TestWatcher_ClearOldModifications(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	// Seed modification state directly so the test does not depend on
	// filesystem event timing.
	w.mu.Lock()
	w.modifications["stale.txt"] = map[string]time.Time{
		"alice": time.Now().Add(-time.Hour),
		"bob":   time.Now().Add(-time.Hour),
	}
	w.recalculateOverlaps()
	w.mu.Unlock()

	if !w.HasOverlaps() {
		t.Fatal("Expected overlap from seeded modifications")
	}

	w.ClearOldModifications(time.Minute)

	if w.HasOverlaps() {
		t.Error("Expected overlaps cleared after expiring old modifications")
	}
	if w.OverlapCount() != 0 {
		t.Errorf("OverlapCount = %d, want 0", w.OverlapCount())
	}
}
