package worktree

import (
	"strings"

	"github.com/FScoward/oh-my-claudecode/internal/errors"
)

// Entry describes one worker worktree: its branch, the worker identity
// derived from the branch name, and the worktree's location on disk.
type Entry struct {
	Branch     string `json:"branch"`
	WorkerName string `json:"worker_name"`
	Path       string `json:"path"`
}

// Registry enumerates a team's worker worktrees from the repository's
// worktree list. Entries are returned in git's listing order, which is
// stable for a given repository state.
type Registry struct {
	prefix   string
	executor CommandExecutor
}

// NewRegistry creates a Registry using the given branch prefix.
// An empty prefix falls back to DefaultBranchPrefix.
func NewRegistry(prefix string) *Registry {
	return NewRegistryWithExecutor(prefix, NewCLICommandExecutor())
}

// NewRegistryWithExecutor creates a Registry with a custom executor.
// This is primarily useful for testing.
func NewRegistryWithExecutor(prefix string, executor CommandExecutor) *Registry {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return &Registry{
		prefix:   prefix,
		executor: executor,
	}
}

// Prefix returns the branch namespace prefix this registry filters on.
func (r *Registry) Prefix() string {
	return r.prefix
}

// ListTeamWorktrees returns the ordered worker entries for a team.
// Worktrees whose checked-out branch does not live under
// <prefix>/<teamName>/ are skipped, as are detached worktrees.
// A team with no matching worktrees yields an empty list, not an error.
func (r *Registry) ListTeamWorktrees(teamName, repoRoot string) ([]Entry, error) {
	output, err := r.executor.Run(repoRoot, "git", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.NewGitError("failed to list worktrees", err).
			WithRepository(repoRoot).
			WithGitOutput(string(output))
	}

	teamPrefix := teamBranchPrefix(r.prefix, teamName)

	var entries []Entry
	for _, wt := range parsePorcelain(string(output)) {
		if wt.branch == "" || !strings.HasPrefix(wt.branch, teamPrefix) {
			continue
		}
		entries = append(entries, Entry{
			Branch:     wt.branch,
			WorkerName: WorkerName(wt.branch),
			Path:       wt.path,
		})
	}

	return entries, nil
}

// porcelainWorktree is one stanza of `git worktree list --porcelain` output.
type porcelainWorktree struct {
	path   string
	branch string
}

// parsePorcelain splits porcelain worktree output into stanzas. Each stanza
// starts with a "worktree <path>" line; "branch refs/heads/<name>" carries
// the checked-out branch, and detached worktrees have no branch line.
func parsePorcelain(output string) []porcelainWorktree {
	var result []porcelainWorktree
	var current *porcelainWorktree

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current != nil {
				result = append(result, *current)
			}
			current = &porcelainWorktree{path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			if current != nil {
				ref := strings.TrimPrefix(line, "branch ")
				current.branch = strings.TrimPrefix(ref, "refs/heads/")
			}
		}
	}
	if current != nil {
		result = append(result, *current)
	}

	return result
}
