package worktree

import (
	"path/filepath"
	"strings"
)

// DefaultBranchPrefix is the branch namespace used when no prefix is configured.
const DefaultBranchPrefix = "omc"

// worktreesDirName is the repository-relative directory that holds worker worktrees.
const worktreesDirName = ".omc/worktrees"

// BranchName builds the branch name for a worker: <prefix>/<team>/<worker>.
func BranchName(prefix, teamName, workerName string) string {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return prefix + "/" + teamName + "/" + workerName
}

// WorkerName derives the worker identity from a branch name: the final path
// segment. A branch name without a path separator is used whole.
func WorkerName(branch string) string {
	if idx := strings.LastIndex(branch, "/"); idx >= 0 {
		return branch[idx+1:]
	}
	return branch
}

// Path returns the default worktree location for a worker, inside the
// repository's local state directory. A configured worktree directory is
// applied by Manager.Path instead.
func Path(repoRoot, teamName, workerName string) string {
	return filepath.Join(repoRoot, worktreesDirName, teamName, workerName)
}

// teamBranchPrefix returns the namespace shared by all of a team's branches.
func teamBranchPrefix(prefix, teamName string) string {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return prefix + "/" + teamName + "/"
}
