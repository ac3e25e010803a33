package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/merge"
)

var detectCmd = &cobra.Command{
	Use:   "detect <worker-branch> [base-branch]",
	Short: "List files likely to conflict when merging a worker branch",
	Long: `Detect compares the files changed on a worker branch against the
files changed on the base branch since their common ancestor, and
prints the overlap. A file both sides touched is a likely merge
conflict; a clean report is a good signal but not a guarantee.

The repository is not modified. If the comparison cannot be completed
(for example the branches share no history) the report is empty.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	workerBranch := args[0]

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

	backend := merge.NewCLIBackend()

	baseBranch := cfg.Merge.BaseBranch
	if len(args) == 2 {
		baseBranch = args[1]
	}
	if baseBranch == "" {
		baseBranch, err = backend.CurrentBranch(root)
		if err != nil {
			return fmt.Errorf("failed to resolve base branch: %w", err)
		}
	}

	detector := merge.NewDetector(backend, logger)
	conflicts := detector.Detect(root, workerBranch, baseBranch)

	if len(conflicts) == 0 {
		fmt.Printf("No conflicting files between %s and %s.\n", workerBranch, baseBranch)
		return nil
	}

	fmt.Printf("Files changed on both %s and %s:\n", workerBranch, baseBranch)
	for _, file := range conflicts {
		fmt.Printf("  %s\n", conflictStyle.Render(file))
	}
	return nil
}
