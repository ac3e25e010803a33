package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/FScoward/oh-my-claudecode/internal/audit"
	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/merge"
	"github.com/FScoward/oh-my-claudecode/internal/util"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	conflictStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

var mergeCmd = &cobra.Command{
	Use:   "merge <team>",
	Short: "Merge a team's worker branches into the base branch",
	Long: `Merge integrates every worker branch belonging to a team into the
base branch, in worktree registry order. Each branch is merged with a
real merge commit (no fast-forward). If a merge fails it is aborted,
the working tree is restored, and the batch stops: no later worker is
attempted.

The base branch defaults to merge.base_branch from configuration, or
the currently checked-out branch if that is empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

var mergeBaseBranch string

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeBaseBranch, "base", "b", "", "base branch to merge into (default: configured or checked-out branch)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	teamName := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root, err := repoRoot()
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	logger := newLogger(cfg, root)
	defer func() { _ = logger.Close() }()

	baseBranch := mergeBaseBranch
	if baseBranch == "" {
		baseBranch = cfg.Merge.BaseBranch
	}

	var auditor merge.Auditor
	if cfg.Audit.Enabled {
		auditLog, auditErr := audit.NewLogger(root, os.Stderr, auditRotation(cfg))
		if auditErr != nil {
			return fmt.Errorf("failed to create audit logger: %w", auditErr)
		}
		defer func() { _ = auditLog.Close() }()
		auditor = auditLog
	}

	backend := merge.NewCLIBackend()
	registry := worktree.NewRegistry(cfg.Branch.Prefix)
	coordinator := merge.NewCoordinator(backend, registry, auditor, logger,
		merge.WithMessageFormat(cfg.Merge.MessageFormat))

	results, err := coordinator.MergeAll(teamName, root, baseBranch)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No worker worktrees found for team %q. Nothing to merge.\n", teamName)
		return nil
	}

	halted := !results[len(results)-1].Success

	printMergeReport(teamName, results)

	if halted {
		// Non-zero exit so scripts can detect the halted batch
		return fmt.Errorf("merge of %q stopped at worker %q", teamName, results[len(results)-1].WorkerName)
	}
	return nil
}

// auditRotation maps the audit configuration onto the rotating writer
// backing the audit log.
func auditRotation(cfg *config.Config) logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  cfg.Audit.MaxSizeMB,
		MaxBackups: cfg.Audit.MaxBackups,
		Compress:   cfg.Audit.Compress,
	}
}

// Report cell widths. Branch names and conflict paths are user controlled
// and can exceed any reasonable terminal width.
const (
	reportBranchWidth = 60
	reportFileWidth   = 72
)

// printMergeReport renders the per-worker outcome of a batch merge.
func printMergeReport(teamName string, results []merge.AttemptResult) {
	fmt.Printf("\nMerge report for team %q:\n\n", teamName)

	for _, result := range results {
		if result.Success {
			fmt.Printf("  %s %s %s\n",
				successStyle.Render("✓"),
				result.WorkerName,
				dimStyle.Render(fmt.Sprintf("(%s @ %s)", util.TruncateANSI(result.Branch, reportBranchWidth), shortCommit(result.MergeCommit))),
			)
			continue
		}

		fmt.Printf("  %s %s %s\n",
			failureStyle.Render("✗"),
			result.WorkerName,
			dimStyle.Render(fmt.Sprintf("(%s)", util.TruncateANSI(result.Branch, reportBranchWidth))),
		)
		if len(result.Conflicts) > 0 {
			fmt.Printf("    %s\n", conflictStyle.Render("conflicting files:"))
			for _, file := range result.Conflicts {
				fmt.Printf("      %s\n", conflictStyle.Render(util.TruncateANSI(file, reportFileWidth)))
			}
		} else {
			fmt.Printf("    %s\n", dimStyle.Render("merge failed; no conflicting files identified"))
		}
	}
	fmt.Println()
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
