package merge

import (
	"fmt"
	"strings"

	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

// fakeBackend is a programmable Backend double. Results are keyed by ref so
// a single fake can drive multi-branch batch scenarios. Every invocation is
// recorded in calls for order and absence assertions.
type fakeBackend struct {
	ancestor    string
	ancestorErr error

	changed    map[string][]string // toRef -> changed files
	changedErr map[string]error    // toRef -> error

	checkoutErr map[string]error // ref -> error
	mergeErr    map[string]error // ref -> error
	abortErr    error

	commits   []string // successive CurrentCommit results
	commitErr error

	branch    string
	branchErr error

	calls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		ancestor:    "ancestor-sha",
		changed:     make(map[string][]string),
		changedErr:  make(map[string]error),
		checkoutErr: make(map[string]error),
		mergeErr:    make(map[string]error),
		branch:      "main",
	}
}

func (f *fakeBackend) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) MergeBase(repoRoot, refA, refB string) (string, error) {
	f.record("merge-base %s %s", refA, refB)
	if f.ancestorErr != nil {
		return "", f.ancestorErr
	}
	return f.ancestor, nil
}

func (f *fakeBackend) ChangedFiles(repoRoot, fromCommit, toRef string) ([]string, error) {
	f.record("changed-files %s %s", fromCommit, toRef)
	if err := f.changedErr[toRef]; err != nil {
		return nil, err
	}
	return f.changed[toRef], nil
}

func (f *fakeBackend) Checkout(repoRoot, ref string) error {
	f.record("checkout %s", ref)
	return f.checkoutErr[ref]
}

func (f *fakeBackend) Merge(repoRoot, ref, message string) error {
	f.record("merge %s", ref)
	return f.mergeErr[ref]
}

func (f *fakeBackend) AbortMerge(repoRoot string) error {
	f.record("abort-merge")
	return f.abortErr
}

func (f *fakeBackend) CurrentCommit(repoRoot string) (string, error) {
	f.record("current-commit")
	if f.commitErr != nil {
		return "", f.commitErr
	}
	if len(f.commits) == 0 {
		return "head-sha", nil
	}
	commit := f.commits[0]
	if len(f.commits) > 1 {
		f.commits = f.commits[1:]
	}
	return commit, nil
}

func (f *fakeBackend) CurrentBranch(repoRoot string) (string, error) {
	f.record("current-branch")
	if f.branchErr != nil {
		return "", f.branchErr
	}
	return f.branch, nil
}

func (f *fakeBackend) called(prefix string) bool {
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

// fakeRegistry returns a fixed entry list.
type fakeRegistry struct {
	entries []worktree.Entry
	err     error
}

func (f *fakeRegistry) ListTeamWorktrees(teamName, repoRoot string) ([]worktree.Entry, error) {
	return f.entries, f.err
}

// fakeAuditor records every event it is handed.
type fakeAuditor struct {
	teams   []string
	results []AttemptResult

	starts    []batchStart
	completes []batchComplete

	err error
}

type batchStart struct {
	team        string
	baseBranch  string
	workerCount int
}

type batchComplete struct {
	team   string
	merged int
	halted bool
}

func (f *fakeAuditor) RecordBatchStart(teamName, baseBranch string, workerCount int) error {
	f.starts = append(f.starts, batchStart{team: teamName, baseBranch: baseBranch, workerCount: workerCount})
	return f.err
}

func (f *fakeAuditor) RecordMergeAttempt(teamName string, result AttemptResult) error {
	f.teams = append(f.teams, teamName)
	f.results = append(f.results, result)
	return f.err
}

func (f *fakeAuditor) RecordBatchComplete(teamName string, merged int, halted bool) error {
	f.completes = append(f.completes, batchComplete{team: teamName, merged: merged, halted: halted})
	return f.err
}
