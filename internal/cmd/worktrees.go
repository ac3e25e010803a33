package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FScoward/oh-my-claudecode/internal/audit"
	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

var worktreesCmd = &cobra.Command{
	Use:   "worktrees",
	Short: "Manage worker worktrees",
	Long: `Worktrees manages the per-worker git worktrees a team works in.
Each worker gets a branch named <prefix>/<team>/<worker> checked out
in its own worktree, so workers never step on each other's working
tree state.`,
}

var worktreesListCmd = &cobra.Command{
	Use:   "list <team>",
	Short: "List a team's worker worktrees",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreesList,
}

var worktreesAddCmd = &cobra.Command{
	Use:   "add <team> <worker>",
	Short: "Create a worker branch and worktree",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorktreesAdd,
}

var worktreesRemoveCmd = &cobra.Command{
	Use:   "remove <team> <worker>",
	Short: "Remove a worker's worktree",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorktreesRemove,
}

var (
	worktreesAddBase    string
	worktreesRemoveKeep bool
)

func init() {
	rootCmd.AddCommand(worktreesCmd)
	worktreesCmd.AddCommand(worktreesListCmd)
	worktreesCmd.AddCommand(worktreesAddCmd)
	worktreesCmd.AddCommand(worktreesRemoveCmd)

	worktreesAddCmd.Flags().StringVarP(&worktreesAddBase, "base", "b", "", "branch the worker branch starts from (default: checked-out branch)")
	worktreesRemoveCmd.Flags().BoolVar(&worktreesRemoveKeep, "keep-branch", false, "keep the worker branch after removing the worktree")
}

func runWorktreesList(cmd *cobra.Command, args []string) error {
	teamName := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root, err := repoRoot()
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	registry := worktree.NewRegistry(cfg.Branch.Prefix)
	entries, err := registry.ListTeamWorktrees(teamName, root)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("No worker worktrees found for team %q.\n", teamName)
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%-20s %-40s %s\n", entry.WorkerName, entry.Branch, entry.Path)
	}
	return nil
}

func runWorktreesAdd(cmd *cobra.Command, args []string) error {
	teamName, workerName := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root, err := repoRoot()
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	baseBranch := worktreesAddBase
	if baseBranch == "" {
		baseBranch = "HEAD"
	}

	manager := worktree.NewManager(cfg.Branch.Prefix, cfg.Paths.ResolveWorktreeDir(root))
	entry, err := manager.Add(root, teamName, workerName, baseBranch)
	if err != nil {
		return err
	}

	if cfg.Audit.Enabled {
		if auditLog, auditErr := audit.NewLogger(root, os.Stderr, auditRotation(cfg)); auditErr == nil {
			_ = auditLog.RecordWorktreeCreate(teamName, entry.WorkerName, entry.Branch, entry.Path)
			_ = auditLog.Close()
		}
	}

	fmt.Printf("Created worktree for %s/%s:\n", teamName, workerName)
	fmt.Printf("  branch:   %s\n", entry.Branch)
	fmt.Printf("  worktree: %s\n", entry.Path)
	return nil
}

func runWorktreesRemove(cmd *cobra.Command, args []string) error {
	teamName, workerName := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root, err := repoRoot()
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	registry := worktree.NewRegistry(cfg.Branch.Prefix)
	entries, err := registry.ListTeamWorktrees(teamName, root)
	if err != nil {
		return err
	}

	var target *worktree.Entry
	for i := range entries {
		if entries[i].WorkerName == workerName {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no worktree found for worker %q in team %q", workerName, teamName)
	}

	manager := worktree.NewManager(cfg.Branch.Prefix, cfg.Paths.ResolveWorktreeDir(root))
	if err := manager.Remove(root, target.Path); err != nil {
		return err
	}
	if !worktreesRemoveKeep {
		if err := manager.DeleteBranch(root, target.Branch); err != nil {
			return err
		}
	}

	if cfg.Audit.Enabled {
		if auditLog, auditErr := audit.NewLogger(root, os.Stderr, auditRotation(cfg)); auditErr == nil {
			_ = auditLog.RecordWorktreeRemove(teamName, target.WorkerName, target.Branch, target.Path)
			_ = auditLog.Close()
		}
	}

	fmt.Printf("Removed worktree for %s/%s.\n", teamName, workerName)
	return nil
}
