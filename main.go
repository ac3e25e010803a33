// Command omc coordinates merging a team's worker branches, each developed
// in its own git worktree, back into a base branch.
package main

import (
	"fmt"
	"os"

	"github.com/FScoward/oh-my-claudecode/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
