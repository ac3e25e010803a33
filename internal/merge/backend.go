package merge

import (
	"strings"

	"github.com/FScoward/oh-my-claudecode/internal/errors"
	"github.com/FScoward/oh-my-claudecode/internal/util"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

// gitOutputLimit bounds the git output captured in errors, so a huge diff
// or merge report does not flood logs and error messages.
const gitOutputLimit = 2000

// Backend defines the version-control operations the merge subsystem needs.
// Every operation takes an explicit repoRoot so multiple coordinators can
// safely target different repositories in the same process (serialized per
// repoRoot by the caller). Implementations must not rely on the process
// working directory.
type Backend interface {
	// MergeBase returns the common ancestor commit of two refs.
	// Fails if the refs share no ancestor or either ref is unknown.
	MergeBase(repoRoot, refA, refB string) (string, error)

	// ChangedFiles returns the paths changed between a commit and a ref,
	// in the backend's reported order. Empty when nothing changed.
	ChangedFiles(repoRoot, fromCommit, toRef string) ([]string, error)

	// Checkout checks out the given ref in the repository working tree.
	Checkout(repoRoot, ref string) error

	// Merge merges ref into the currently checked-out branch, always
	// creating a merge commit (no fast-forward) with the given message.
	// A conflict surfaces as an error matching errors.ErrMergeConflict.
	Merge(repoRoot, ref, message string) error

	// AbortMerge aborts an in-progress merge. Calling it when no merge is
	// in progress is a no-op success.
	AbortMerge(repoRoot string) error

	// CurrentCommit returns the commit id of HEAD.
	CurrentCommit(repoRoot string) (string, error)

	// CurrentBranch returns the name of the currently checked-out branch.
	CurrentBranch(repoRoot string) (string, error)
}

// CLIBackend implements Backend using git CLI commands through a
// worktree.CommandExecutor, so tests can substitute a mock executor.
type CLIBackend struct {
	executor worktree.CommandExecutor
}

// NewCLIBackend creates a Backend bound to the git CLI.
func NewCLIBackend() *CLIBackend {
	return &CLIBackend{executor: worktree.NewCLICommandExecutor()}
}

// NewCLIBackendWithExecutor creates a CLIBackend with a custom executor.
// This is primarily useful for testing.
func NewCLIBackendWithExecutor(executor worktree.CommandExecutor) *CLIBackend {
	return &CLIBackend{executor: executor}
}

// MergeBase returns the common ancestor of two refs via git merge-base.
func (b *CLIBackend) MergeBase(repoRoot, refA, refB string) (string, error) {
	output, err := b.executor.Run(repoRoot, "git", "merge-base", refA, refB)
	if err != nil {
		return "", errors.NewGitError("failed to find common ancestor", errors.ErrNoMergeBase).
			WithRepository(repoRoot).
			WithBranch(refA + ".." + refB).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return strings.TrimSpace(string(output)), nil
}

// ChangedFiles returns the paths changed between fromCommit and toRef.
func (b *CLIBackend) ChangedFiles(repoRoot, fromCommit, toRef string) ([]string, error) {
	output, err := b.executor.Run(repoRoot, "git", "diff", "--name-only", fromCommit, toRef)
	if err != nil {
		return nil, errors.NewGitError("failed to diff changed files", err).
			WithRepository(repoRoot).
			WithBranch(toRef).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}

	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return []string{}, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// Checkout checks out the given ref in the repository working tree.
func (b *CLIBackend) Checkout(repoRoot, ref string) error {
	output, err := b.executor.Run(repoRoot, "git", "checkout", ref)
	if err != nil {
		return errors.NewGitError("failed to checkout "+ref, err).
			WithRepository(repoRoot).
			WithBranch(ref).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return nil
}

// Merge performs a no-fast-forward merge of ref into the checked-out branch.
func (b *CLIBackend) Merge(repoRoot, ref, message string) error {
	output, err := b.executor.Run(repoRoot, "git", "merge", "--no-ff", "-m", message, ref)
	if err != nil {
		cause := err
		if isConflictOutput(string(output)) {
			cause = errors.ErrMergeConflict
		}
		return errors.NewGitError("failed to merge "+ref, cause).
			WithRepository(repoRoot).
			WithBranch(ref).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return nil
}

// AbortMerge aborts an in-progress merge. "No merge to abort" is success:
// the abort is called unconditionally on failure paths and must be idempotent.
func (b *CLIBackend) AbortMerge(repoRoot string) error {
	output, err := b.executor.Run(repoRoot, "git", "merge", "--abort")
	if err != nil {
		if isNoMergeInProgress(string(output)) {
			return nil
		}
		return errors.NewGitError("failed to abort merge", err).
			WithRepository(repoRoot).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return nil
}

// CurrentCommit returns the commit id of HEAD.
func (b *CLIBackend) CurrentCommit(repoRoot string) (string, error) {
	output, err := b.executor.Run(repoRoot, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", errors.NewGitError("failed to resolve HEAD", err).
			WithRepository(repoRoot).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func (b *CLIBackend) CurrentBranch(repoRoot string) (string, error) {
	output, err := b.executor.Run(repoRoot, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.NewGitError("failed to resolve current branch", err).
			WithRepository(repoRoot).
			WithGitOutput(util.TruncateString(string(output), gitOutputLimit))
	}
	return strings.TrimSpace(string(output)), nil
}

// isConflictOutput reports whether git output indicates a content conflict.
func isConflictOutput(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "conflict") ||
		strings.Contains(lower, "automatic merge failed")
}

// isNoMergeInProgress reports whether git refused an abort because no merge
// was running. Message wording varies across git versions.
func isNoMergeInProgress(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "there is no merge to abort") ||
		strings.Contains(lower, "merge_head missing") ||
		strings.Contains(lower, "no merge in progress")
}

// Ensure CLIBackend satisfies the interface at compile time.
var _ Backend = (*CLIBackend)(nil)
