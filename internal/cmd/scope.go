package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/permission"
)

var scopeCmd = &cobra.Command{
	Use:   "scope <worker> [file...]",
	Short: "Show a worker's advisory scope or check files against it",
	Long: `Scope renders the advisory permission scope configured for a worker
as plain-text instructions, suitable for inclusion in the worker's
task prompt. When file paths are given, it instead checks each path
against the scope and reports the ones that fall outside it.

Scopes are advisory: nothing is enforced, out-of-scope changes are
only flagged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScope,
}

func init() {
	rootCmd.AddCommand(scopeCmd)
}

func runScope(cmd *cobra.Command, args []string) error {
	workerName := args[0]
	files := args[1:]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	scopes, err := permission.NewSet(cfg.Scopes)
	if err != nil {
		return err
	}
	scope := scopes.Lookup(workerName)

	if len(files) == 0 {
		prompt, err := scope.RenderPrompt()
		if err != nil {
			return fmt.Errorf("failed to render scope: %w", err)
		}
		fmt.Print(prompt)
		return nil
	}

	violations := scope.OutOfScope(files)
	if len(violations) == 0 {
		fmt.Printf("All %d files are within %s's scope.\n", len(files), workerName)
		return nil
	}

	fmt.Printf("Out of scope for %s:\n", workerName)
	for _, file := range violations {
		fmt.Printf("  %s\n", conflictStyle.Render(file))
	}
	return fmt.Errorf("%d of %d files are out of scope", len(violations), len(files))
}
