package merge

import (
	"github.com/FScoward/oh-my-claudecode/internal/logging"
)

// Detector computes the set of files whose changes could overlap between a
// worker branch and the base branch, without mutating repository state.
type Detector struct {
	backend Backend
	logger  *logging.Logger
}

// NewDetector creates a Detector over the given backend.
func NewDetector(backend Backend, logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Detector{
		backend: backend,
		logger:  logger.WithPhase("detect"),
	}
}

// Detect returns the files changed on both sides of a prospective merge of
// workerBranch into baseBranch, relative to their common ancestor. The result
// preserves the worker side's ordering.
//
// Any backend failure is treated as "cannot determine, assume no conflicts"
// and yields an empty result. The indeterminate case is logged at WARN so it
// remains distinguishable from a genuinely clean pair.
func (d *Detector) Detect(repoRoot, workerBranch, baseBranch string) []string {
	ancestor, err := d.backend.MergeBase(repoRoot, baseBranch, workerBranch)
	if err != nil {
		d.logger.Warn("conflict detection indeterminate",
			"reason", "merge-base failed",
			"worker_branch", workerBranch,
			"base_branch", baseBranch,
			"error", err.Error(),
		)
		return nil
	}

	baseChanged, err := d.backend.ChangedFiles(repoRoot, ancestor, baseBranch)
	if err != nil {
		d.logger.Warn("conflict detection indeterminate",
			"reason", "base diff failed",
			"base_branch", baseBranch,
			"error", err.Error(),
		)
		return nil
	}

	workerChanged, err := d.backend.ChangedFiles(repoRoot, ancestor, workerBranch)
	if err != nil {
		d.logger.Warn("conflict detection indeterminate",
			"reason", "worker diff failed",
			"worker_branch", workerBranch,
			"error", err.Error(),
		)
		return nil
	}

	if len(baseChanged) == 0 || len(workerChanged) == 0 {
		return nil
	}

	baseSet := make(map[string]struct{}, len(baseChanged))
	for _, path := range baseChanged {
		baseSet[path] = struct{}{}
	}

	var overlap []string
	for _, path := range workerChanged {
		if _, ok := baseSet[path]; ok {
			overlap = append(overlap, path)
		}
	}

	if len(overlap) > 0 {
		d.logger.Debug("overlapping changes detected",
			"worker_branch", workerBranch,
			"base_branch", baseBranch,
			"files", overlap,
		)
	}

	return overlap
}
