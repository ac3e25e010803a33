package merge

import (
	"github.com/FScoward/oh-my-claudecode/internal/errors"
	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

// Registry supplies the ordered list of worker worktrees for a team.
type Registry interface {
	ListTeamWorktrees(teamName, repoRoot string) ([]worktree.Entry, error)
}

// Auditor records batch lifecycle events and merge attempt outcomes.
// Implementations are best effort from the coordinator's perspective:
// recording failures never fail a merge.
type Auditor interface {
	RecordBatchStart(teamName, baseBranch string, workerCount int) error
	RecordMergeAttempt(teamName string, result AttemptResult) error
	RecordBatchComplete(teamName string, merged int, halted bool) error
}

// Coordinator merges every worker branch belonging to a team, in worktree
// registry order, stopping at the first failure.
//
// Once a merge fails and is aborted the working tree is back on the base
// branch at its pre-merge state, but the team's intended integration order
// may be semantically dependent, so continuing past a failure would produce
// a misleading partial-success report.
type Coordinator struct {
	executor *Executor
	backend  Backend
	registry Registry
	auditor  Auditor // optional
	logger   *logging.Logger
}

// CoordinatorOption configures a Coordinator beyond its required
// collaborators.
type CoordinatorOption func(*Coordinator)

// WithMessageFormat sets the merge commit message format used for every
// attempt in a batch. The format must contain two %s verbs: worker branch,
// then base branch. An empty format keeps the default.
func WithMessageFormat(format string) CoordinatorOption {
	return func(c *Coordinator) {
		if format != "" {
			c.executor.MessageFormat = format
		}
	}
}

// NewCoordinator creates a Coordinator. The auditor may be nil, in which case
// no audit events are recorded.
func NewCoordinator(backend Backend, registry Registry, auditor Auditor, logger *logging.Logger, opts ...CoordinatorOption) *Coordinator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	c := &Coordinator{
		executor: NewExecutor(backend, logger),
		backend:  backend,
		registry: registry,
		auditor:  auditor,
		logger:   logger.WithPhase("batch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MergeAll merges each of teamName's worker branches into baseBranch in
// registry order. An empty baseBranch resolves to the currently checked-out
// branch. The returned sequence follows registry order and is truncated at,
// and including, the first failing attempt.
//
// An empty registry listing is a no-op, not an error, and does not touch the
// backend. Errors are returned only for failures that occur before any merge
// attempt begins (registry listing, base branch resolution); per-branch
// failures are reported inside the result sequence.
func (c *Coordinator) MergeAll(teamName, repoRoot, baseBranch string) ([]AttemptResult, error) {
	logger := c.logger.WithTeam(teamName)

	entries, err := c.registry.ListTeamWorktrees(teamName, repoRoot)
	if err != nil {
		return nil, errors.NewCoordinatorError("failed to list team worktrees", err).
			WithTeam(teamName).
			WithRepository(repoRoot)
	}
	if len(entries) == 0 {
		logger.Info("no worker worktrees registered, nothing to merge")
		return nil, nil
	}

	if baseBranch == "" {
		baseBranch, err = c.backend.CurrentBranch(repoRoot)
		if err != nil {
			return nil, errors.NewCoordinatorError("failed to resolve base branch", errors.ErrBaseBranchUnknown).
				WithTeam(teamName).
				WithRepository(repoRoot)
		}
	}

	logger.Info("batch merge started",
		"base_branch", baseBranch,
		"worker_count", len(entries),
	)
	c.record(teamName, "batch start", func(a Auditor) error {
		return a.RecordBatchStart(teamName, baseBranch, len(entries))
	})

	results := make([]AttemptResult, 0, len(entries))
	for _, entry := range entries {
		result := c.executor.Merge(repoRoot, entry.Branch, baseBranch)
		results = append(results, result)
		c.record(teamName, "merge attempt", func(a Auditor) error {
			return a.RecordMergeAttempt(teamName, result)
		})

		if !result.Success {
			logger.Warn("batch merge halted at first failure",
				"worker", result.WorkerName,
				"branch", result.Branch,
				"merged", len(results)-1,
				"remaining", len(entries)-len(results),
			)
			break
		}
	}

	merged := len(results)
	halted := !results[len(results)-1].Success
	if halted {
		merged--
	} else {
		logger.Info("batch merge completed", "merged", merged)
	}
	c.record(teamName, "batch complete", func(a Auditor) error {
		return a.RecordBatchComplete(teamName, merged, halted)
	})

	return results, nil
}

// record forwards one event to the auditor, if one is configured. Audit
// failures are logged and swallowed.
func (c *Coordinator) record(teamName, event string, fn func(Auditor) error) {
	if c.auditor == nil {
		return
	}
	if err := fn(c.auditor); err != nil {
		c.logger.Warn("audit record failed",
			"team", teamName,
			"event", event,
			"error", err.Error(),
		)
	}
}
