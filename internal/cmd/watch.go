package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/tui"
	"github.com/FScoward/oh-my-claudecode/internal/watch"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

var watchCmd = &cobra.Command{
	Use:   "watch <team>",
	Short: "Watch a team's worktrees for overlapping file changes",
	Long: `Watch observes every worker worktree of a team and shows, live, the
files more than one worker has modified. A file touched in two
worktrees today is a likely merge conflict at integration time, so
overlaps are worth resolving while the work is still in flight.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	registry := worktree.NewRegistry(cfg.Branch.Prefix)
	entries, err := registry.ListTeamWorktrees(teamName, root)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No worker worktrees found for team %q. Nothing to watch.\n", teamName)
		return nil
	}

	watcher, err := watch.New(
		logger,
		watch.WithIgnoreDirs(cfg.Watch.IgnoreDirs),
		watch.WithDebounce(cfg.Watch.Debounce()),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.AddWorktrees(entries); err != nil {
		return err
	}
	watcher.Start()

	return tui.RunWatch(watcher, teamName, len(entries))
}
