// Package watch observes a team's worker worktrees for files touched by
// more than one worker. An overlap today is a likely merge conflict later,
// so surfacing overlaps while workers are still running gives the team a
// chance to re-scope before integration.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

// defaultDebounce coalesces editor save bursts into one pass
const defaultDebounce = 50 * time.Millisecond

// Overlap represents a file modified in multiple worker worktrees
type Overlap struct {
	RelativePath string    // Path relative to worktree root
	Workers      []string  // Worker names that modified this file
	LastModified time.Time // When the overlap was last observed
}

// Watcher watches worker worktrees and reports cross-worker file overlaps
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *logging.Logger

	// Map of worker name -> worktree path
	workers map[string]string

	// Map of relative path -> worker name -> last modification time.
	// Relative paths are comparable across worktrees.
	modifications map[string]map[string]time.Time

	// Current overlaps
	overlaps []Overlap

	// Callback for overlap notifications
	onOverlap func([]Overlap)

	// Directory names to ignore (e.g., .git, node_modules)
	ignoreDirs []string

	debounce time.Duration

	mu     sync.RWMutex
	stopCh chan struct{}
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithIgnoreDirs overrides the directory names excluded from watching.
func WithIgnoreDirs(dirs []string) Option {
	return func(w *Watcher) {
		if len(dirs) > 0 {
			w.ignoreDirs = dirs
		}
	}
}

// WithDebounce overrides the event debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher. Call AddWorker for each worktree, then Start.
func New(logger *logging.Logger, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	w := &Watcher{
		watcher:       fsWatcher,
		logger:        logger.WithPhase("watch"),
		workers:       make(map[string]string),
		modifications: make(map[string]map[string]time.Time),
		overlaps:      make([]Overlap, 0),
		ignoreDirs:    []string{".git", ".omc", "node_modules", ".DS_Store"},
		debounce:      defaultDebounce,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SetOverlapCallback sets the callback invoked when overlaps are detected
func (w *Watcher) SetOverlapCallback(cb func([]Overlap)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onOverlap = cb
}

// AddWorker starts watching a worker's worktree
func (w *Watcher) AddWorker(workerName, worktreePath string) error {
	info, err := os.Stat(worktreePath)
	if err != nil {
		return fmt.Errorf("worktree path does not exist: %s", worktreePath)
	}
	if !info.IsDir() {
		return fmt.Errorf("worktree path is not a directory: %s", worktreePath)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.workers[workerName] = worktreePath

	// Watch the root directory; fsnotify catches events per directory, so
	// subdirectories are added recursively below.
	if err := w.watcher.Add(worktreePath); err != nil {
		return err
	}

	return w.watchDirRecursive(worktreePath)
}

// AddWorktrees registers every entry from a worktree listing
func (w *Watcher) AddWorktrees(entries []worktree.Entry) error {
	for _, entry := range entries {
		if err := w.AddWorker(entry.WorkerName, entry.Path); err != nil {
			return err
		}
	}
	return nil
}

// watchDirRecursive adds all subdirectories to the watcher
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		base := filepath.Base(path)
		for _, ignore := range w.ignoreDirs {
			if base == ignore {
				return filepath.SkipDir
			}
		}

		// Only directories can be watched with fsnotify
		if info.IsDir() {
			_ = w.watcher.Add(path)
		}

		return nil
	})
}

// RemoveWorker stops watching a worker's worktree
func (w *Watcher) RemoveWorker(workerName string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	worktreePath, ok := w.workers[workerName]
	if !ok {
		return
	}

	_ = w.watcher.Remove(worktreePath)
	delete(w.workers, workerName)

	for relPath, workers := range w.modifications {
		delete(workers, workerName)
		if len(workers) == 0 {
			delete(w.modifications, relPath)
		}
	}

	w.recalculateOverlaps()
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher and cleans up resources
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
}

// watchLoop processes filesystem events
func (w *Watcher) watchLoop() {
	// Many editors produce several events for a single save, so collect
	// events briefly before processing them.
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	pendingEvents := make(map[string]fsnotify.Event)
	var pendingMu sync.Mutex

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about write/create operations
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			pendingMu.Lock()
			pendingEvents[event.Name] = event
			pendingMu.Unlock()

			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			pendingMu.Lock()
			events := pendingEvents
			pendingEvents = make(map[string]fsnotify.Event)
			pendingMu.Unlock()

			for _, event := range events {
				w.handleFileEvent(event)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err.Error())
		}
	}
}

// handleFileEvent processes a single file modification event
func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := event.Name

	for _, ignore := range w.ignoreDirs {
		if strings.Contains(path, string(filepath.Separator)+ignore+string(filepath.Separator)) ||
			strings.HasSuffix(path, string(filepath.Separator)+ignore) ||
			filepath.Base(path) == ignore {
			return
		}
	}

	// Find which worker's worktree this file belongs to
	var matchedWorker string
	var relativePath string

	for workerName, worktreePath := range w.workers {
		if strings.HasPrefix(path, worktreePath) {
			matchedWorker = workerName
			relativePath, _ = filepath.Rel(worktreePath, path)
			break
		}
	}

	if matchedWorker == "" {
		return // Not in any watched worktree
	}

	if w.modifications[relativePath] == nil {
		w.modifications[relativePath] = make(map[string]time.Time)
	}
	w.modifications[relativePath][matchedWorker] = time.Now()

	w.recalculateOverlaps()
}

// recalculateOverlaps checks all tracked files for cross-worker overlaps
func (w *Watcher) recalculateOverlaps() {
	overlaps := make([]Overlap, 0)

	for relPath, workers := range w.modifications {
		if len(workers) > 1 {
			var names []string
			var lastMod time.Time

			for name, modTime := range workers {
				names = append(names, name)
				if modTime.After(lastMod) {
					lastMod = modTime
				}
			}

			overlaps = append(overlaps, Overlap{
				RelativePath: relPath,
				Workers:      names,
				LastModified: lastMod,
			})
		}
	}

	w.overlaps = overlaps

	if w.onOverlap != nil && len(overlaps) > 0 {
		w.onOverlap(overlaps)
	}
}

// Overlaps returns the current list of overlaps
func (w *Watcher) Overlaps() []Overlap {
	w.mu.RLock()
	defer w.mu.RUnlock()

	// Return a copy to avoid race conditions
	result := make([]Overlap, len(w.overlaps))
	copy(result, w.overlaps)
	return result
}

// FilesModifiedByWorker returns files modified by a specific worker
func (w *Watcher) FilesModifiedByWorker(workerName string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var files []string
	for relPath, workers := range w.modifications {
		if _, ok := workers[workerName]; ok {
			files = append(files, relPath)
		}
	}
	return files
}

// ClearOldModifications removes modifications older than the given duration
func (w *Watcher) ClearOldModifications(maxAge time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)

	for relPath, workers := range w.modifications {
		for workerName, modTime := range workers {
			if modTime.Before(cutoff) {
				delete(workers, workerName)
			}
		}
		if len(workers) == 0 {
			delete(w.modifications, relPath)
		}
	}

	w.recalculateOverlaps()
}

// HasOverlaps returns true if there are any active overlaps
func (w *Watcher) HasOverlaps() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.overlaps) > 0
}

// OverlapCount returns the number of files with overlaps
func (w *Watcher) OverlapCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.overlaps)
}
