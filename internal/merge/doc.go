// Package merge coordinates reintegration of worker branches into a shared
// base branch.
//
// The package is built from three pieces layered on a [Backend] capability
// interface:
//
//   - [Detector] computes the set of files changed on both sides of a
//     prospective merge relative to their common ancestor, without touching
//     repository state.
//   - [Executor] performs one destructive merge attempt and guarantees the
//     repository is returned to a clean state when the attempt fails.
//   - [Coordinator] merges every worker branch belonging to a team in
//     registry order, stopping at the first failure.
//
// Execution is synchronous and single-threaded: the repository working tree
// is a single mutable shared resource, so callers must serialize coordination
// runs per repository root. The package takes no locks of its own.
package merge
