package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/logging"
	"github.com/FScoward/oh-my-claudecode/internal/worktree"
)

var rootCmd = &cobra.Command{
	Use:   "omc",
	Short: "Merge coordination for team worker branches",
	Long: `omc coordinates the integration of a team's worker branches, each
developed in its own git worktree, back into a base branch. It detects
likely conflicts before merging, merges worker branches one at a time
with guaranteed cleanup on failure, and stops a batch at the first
failed merge so the repository is never left half-integrated.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/omc/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/omc")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OMC")
	// Replace dots with underscores for nested keys in env vars
	// e.g., OMC_MERGE_BASE_BRANCH for merge.base_branch
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// repoRoot resolves the root of the enclosing git repository.
func repoRoot() (string, error) {
	executor := worktree.NewCLICommandExecutor()
	output, err := executor.Run(".", "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// newLogger builds the configured logger. Logging failures degrade to a
// no-op logger rather than blocking the command.
func newLogger(cfg *config.Config, root string) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewRotatingLogger(
		cfg.Paths.ResolveLogDir(root),
		cfg.Logging.Level,
		logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   true,
		},
	)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}
