package worktree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/FScoward/oh-my-claudecode/internal/errors"
)

// Manager handles worker worktree lifecycle: creating a worktree with its
// worker branch, and removing it when the worker is done.
type Manager struct {
	prefix      string
	worktreeDir string
	executor    CommandExecutor
}

// NewManager creates a Manager using the given branch prefix. worktreeDir is
// the directory worker worktrees are created under, and may live outside the
// repository; empty falls back to .omc/worktrees under the repository root.
func NewManager(prefix, worktreeDir string) *Manager {
	return NewManagerWithExecutor(prefix, worktreeDir, NewCLICommandExecutor())
}

// NewManagerWithExecutor creates a Manager with a custom executor.
// This is primarily useful for testing.
func NewManagerWithExecutor(prefix, worktreeDir string, executor CommandExecutor) *Manager {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return &Manager{
		prefix:      prefix,
		worktreeDir: worktreeDir,
		executor:    executor,
	}
}

// Path returns the worktree location for a worker under the manager's
// worktree directory.
func (m *Manager) Path(repoRoot, teamName, workerName string) string {
	if m.worktreeDir == "" {
		return Path(repoRoot, teamName, workerName)
	}
	return filepath.Join(m.worktreeDir, teamName, workerName)
}

// Add creates a worktree and a new worker branch based on baseBranch, at the
// manager's path for the team and worker. Returns the resulting Entry.
func (m *Manager) Add(repoRoot, teamName, workerName, baseBranch string) (Entry, error) {
	branch := BranchName(m.prefix, teamName, workerName)
	path := m.Path(repoRoot, teamName, workerName)

	output, err := m.executor.Run(repoRoot, "git", "worktree", "add", "-b", branch, path, baseBranch)
	if err != nil {
		if strings.Contains(string(output), "already exists") {
			return Entry{}, errors.NewGitError("worker worktree already exists", errors.ErrWorktreeExists).
				WithRepository(repoRoot).
				WithWorktree(path).
				WithBranch(branch).
				WithGitOutput(string(output))
		}
		return Entry{}, errors.NewGitError("failed to create worker worktree", err).
			WithRepository(repoRoot).
			WithWorktree(path).
			WithBranch(branch).
			WithGitOutput(string(output))
	}

	return Entry{
		Branch:     branch,
		WorkerName: workerName,
		Path:       path,
	}, nil
}

// Remove removes a worker worktree at the given path.
// On failure it falls back to deleting the directory and pruning stale
// worktree references before reporting the error.
func (m *Manager) Remove(repoRoot, path string) error {
	output, err := m.executor.Run(repoRoot, "git", "worktree", "remove", "--force", path)
	if err != nil {
		_ = os.RemoveAll(path)
		_, _ = m.executor.Run(repoRoot, "git", "worktree", "prune")

		return errors.NewGitError("failed to remove worktree cleanly", err).
			WithRepository(repoRoot).
			WithWorktree(path).
			WithGitOutput(string(output))
	}
	return nil
}

// DeleteBranch force-deletes a worker branch after its worktree is gone.
func (m *Manager) DeleteBranch(repoRoot, branch string) error {
	output, err := m.executor.Run(repoRoot, "git", "branch", "-D", branch)
	if err != nil {
		if strings.Contains(string(output), "not found") {
			return errors.NewGitError("branch not found", errors.ErrBranchNotFound).
				WithRepository(repoRoot).
				WithBranch(branch).
				WithGitOutput(string(output))
		}
		return errors.NewGitError("failed to delete branch", err).
			WithRepository(repoRoot).
			WithBranch(branch).
			WithGitOutput(string(output))
	}
	return nil
}
