package merge

import (
	"fmt"

	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

// defaultMessageFormat generates the merge commit message. The two verbs are
// the worker branch and the base branch.
const defaultMessageFormat = "Merge branch '%s' into %s (omc)"

// AttemptResult is the outcome of one merge attempt. It is constructed once
// per attempted branch and never mutated afterwards.
//
// Invariants: a successful attempt has a non-empty MergeCommit and no
// Conflicts; a failed attempt has an empty MergeCommit. Conflicts may be
// empty on failure when the cause could not be determined.
type AttemptResult struct {
	WorkerName  string   `json:"worker_name"`
	Branch      string   `json:"branch"`
	Success     bool     `json:"success"`
	Conflicts   []string `json:"conflicts,omitempty"`
	MergeCommit string   `json:"merge_commit,omitempty"`
}

// Executor performs one destructive merge attempt of a worker branch into a
// base branch, guaranteeing the repository returns to a clean state on
// failure.
type Executor struct {
	backend  Backend
	detector *Detector
	logger   *logging.Logger

	// MessageFormat overrides the merge commit message format. It must
	// contain two %s verbs: worker branch, then base branch.
	MessageFormat string
}

// NewExecutor creates an Executor over the given backend.
func NewExecutor(backend Backend, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Executor{
		backend:       backend,
		detector:      NewDetector(backend, logger),
		logger:        logger.WithPhase("merge"),
		MessageFormat: defaultMessageFormat,
	}
}

// Merge checks out baseBranch and attempts a no-fast-forward merge of
// workerBranch into it. On any failure the in-progress merge is aborted
// unconditionally, so the working tree is never left in an unresolved-merge
// state, and the attempt is reported with best-effort conflict information.
func (e *Executor) Merge(repoRoot, workerBranch, baseBranch string) AttemptResult {
	workerName := worktree.WorkerName(workerBranch)
	logger := e.logger.WithWorker(workerName)

	if err := e.backend.Checkout(repoRoot, baseBranch); err != nil {
		logger.Error("checkout of base branch failed",
			"base_branch", baseBranch,
			"error", err.Error(),
		)
		return e.failed(repoRoot, workerName, workerBranch, baseBranch)
	}

	message := fmt.Sprintf(e.MessageFormat, workerBranch, baseBranch)
	if err := e.backend.Merge(repoRoot, workerBranch, message); err != nil {
		logger.Warn("merge failed",
			"branch", workerBranch,
			"base_branch", baseBranch,
			"error", err.Error(),
		)
		return e.failed(repoRoot, workerName, workerBranch, baseBranch)
	}

	commit, err := e.backend.CurrentCommit(repoRoot)
	if err != nil {
		// A merge commit exists but its id is unknown; without the id the
		// result cannot satisfy the success invariant, so report failure
		// after restoring a clean tree.
		logger.Error("failed to resolve merge commit",
			"branch", workerBranch,
			"error", err.Error(),
		)
		return e.failed(repoRoot, workerName, workerBranch, baseBranch)
	}

	logger.Info("merge succeeded",
		"branch", workerBranch,
		"base_branch", baseBranch,
		"merge_commit", commit,
	)

	return AttemptResult{
		WorkerName:  workerName,
		Branch:      workerBranch,
		Success:     true,
		MergeCommit: commit,
	}
}

// failed aborts any in-progress merge and builds the failure result. The
// abort is best effort: its own failure is swallowed, never propagated.
func (e *Executor) failed(repoRoot, workerName, workerBranch, baseBranch string) AttemptResult {
	if err := e.backend.AbortMerge(repoRoot); err != nil {
		e.logger.Warn("merge abort failed",
			"worker", workerName,
			"error", err.Error(),
		)
	}

	conflicts := e.detector.Detect(repoRoot, workerBranch, baseBranch)
	if len(conflicts) == 0 {
		e.logger.Warn("merge failed without detectable conflicts",
			"worker", workerName,
			"branch", workerBranch,
		)
	}

	return AttemptResult{
		WorkerName: workerName,
		Branch:     workerBranch,
		Success:    false,
		Conflicts:  conflicts,
	}
}
