package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete omc configuration
type Config struct {
	Branch  BranchConfig           `mapstructure:"branch"`
	Merge   MergeConfig            `mapstructure:"merge"`
	Watch   WatchConfig            `mapstructure:"watch"`
	Logging LoggingConfig          `mapstructure:"logging"`
	Audit   AuditConfig            `mapstructure:"audit"`
	Paths   PathsConfig            `mapstructure:"paths"`
	Scopes  map[string]ScopeConfig `mapstructure:"scopes"`
}

// BranchConfig controls branch naming conventions
type BranchConfig struct {
	// Prefix is the branch name prefix (default: "omc")
	// Worker branches are named <prefix>/<team>/<worker>
	Prefix string `mapstructure:"prefix"`
}

// MergeConfig controls batch merge behavior
type MergeConfig struct {
	// BaseBranch is the branch worker branches merge into.
	// Empty means the currently checked-out branch.
	BaseBranch string `mapstructure:"base_branch"`
	// MessageFormat is the merge commit message format.
	// It must contain two %s verbs: worker branch, then base branch.
	MessageFormat string `mapstructure:"message_format"`
}

// WatchConfig controls the live overlap watcher
type WatchConfig struct {
	// DebounceMs is how long to wait after a filesystem event before
	// rescanning, so bursts of writes coalesce into one scan
	DebounceMs int `mapstructure:"debounce_ms"`
	// IgnoreDirs are directory names excluded from watching
	IgnoreDirs []string `mapstructure:"ignore_dirs"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// AuditConfig controls the append-only audit log
type AuditConfig struct {
	// Enabled controls whether merge attempts are audited (default: true)
	Enabled bool `mapstructure:"enabled"`
	// MaxSizeMB is the maximum audit log size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated audit log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress controls whether rotated audit log files are gzip compressed
	Compress bool `mapstructure:"compress"`
}

// PathsConfig controls where omc stores data
type PathsConfig struct {
	// WorktreeDir is the directory where git worktrees are created.
	// If empty, defaults to ".omc/worktrees" relative to the repository root.
	// Can be an absolute path to store worktrees outside the repository.
	// Supports ~ for home directory expansion.
	WorktreeDir string `mapstructure:"worktree_dir"`
	// LogDir is where debug logs are written.
	// If empty, defaults to ".omc/logs" relative to the repository root.
	LogDir string `mapstructure:"log_dir"`
}

// ScopeConfig is an advisory permission scope for one worker.
// Path and command patterns use glob syntax.
type ScopeConfig struct {
	// AllowedPaths are glob patterns for paths the worker may touch
	AllowedPaths []string `mapstructure:"allowed_paths"`
	// DeniedPaths are glob patterns for paths the worker must not touch.
	// Denials win over allowances.
	DeniedPaths []string `mapstructure:"denied_paths"`
	// AllowedCommands are glob patterns for commands the worker may run
	AllowedCommands []string `mapstructure:"allowed_commands"`
}

// Debounce returns the watch debounce as a time.Duration
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// ResolveWorktreeDir returns the resolved worktree directory path.
// If WorktreeDir is empty, it returns the default path relative to baseDir.
// If WorktreeDir starts with ~, it expands to the user's home directory.
// If WorktreeDir is a relative path, it's resolved relative to baseDir.
func (p *PathsConfig) ResolveWorktreeDir(baseDir string) string {
	return resolveDir(p.WorktreeDir, baseDir, filepath.Join(".omc", "worktrees"))
}

// ResolveLogDir returns the resolved log directory path, with the same
// rules as ResolveWorktreeDir.
func (p *PathsConfig) ResolveLogDir(baseDir string) string {
	return resolveDir(p.LogDir, baseDir, filepath.Join(".omc", "logs"))
}

func resolveDir(path, baseDir, fallback string) string {
	if path == "" {
		return filepath.Join(baseDir, fallback)
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Branch: BranchConfig{
			Prefix: "omc",
		},
		Merge: MergeConfig{
			BaseBranch:    "", // Empty means use the checked-out branch
			MessageFormat: "Merge branch '%s' into %s (omc)",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			IgnoreDirs: []string{".git", "node_modules", "vendor"},
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Audit: AuditConfig{
			Enabled:    true,
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Paths: PathsConfig{
			WorktreeDir: "", // Empty means use default: .omc/worktrees
			LogDir:      "", // Empty means use default: .omc/logs
		},
		Scopes: map[string]ScopeConfig{},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Branch defaults
	viper.SetDefault("branch.prefix", defaults.Branch.Prefix)

	// Merge defaults
	viper.SetDefault("merge.base_branch", defaults.Merge.BaseBranch)
	viper.SetDefault("merge.message_format", defaults.Merge.MessageFormat)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	viper.SetDefault("watch.ignore_dirs", defaults.Watch.IgnoreDirs)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Audit defaults
	viper.SetDefault("audit.enabled", defaults.Audit.Enabled)
	viper.SetDefault("audit.max_size_mb", defaults.Audit.MaxSizeMB)
	viper.SetDefault("audit.max_backups", defaults.Audit.MaxBackups)
	viper.SetDefault("audit.compress", defaults.Audit.Compress)

	// Paths defaults
	viper.SetDefault("paths.worktree_dir", defaults.Paths.WorktreeDir)
	viper.SetDefault("paths.log_dir", defaults.Paths.LogDir)

	// Scope defaults
	viper.SetDefault("scopes", defaults.Scopes)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "omc")
	}
	// Fall back to ~/.config/omc
	home, err := os.UserHomeDir()
	if err != nil {
		return ".omc"
	}
	return filepath.Join(home, ".config", "omc")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
