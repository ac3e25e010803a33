package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default branch config
	if cfg.Branch.Prefix != "omc" {
		t.Errorf("Branch.Prefix = %q, want %q", cfg.Branch.Prefix, "omc")
	}

	// Verify default merge config
	if cfg.Merge.BaseBranch != "" {
		t.Errorf("Merge.BaseBranch = %q, want empty", cfg.Merge.BaseBranch)
	}
	if cfg.Merge.MessageFormat != "Merge branch '%s' into %s (omc)" {
		t.Errorf("Merge.MessageFormat = %q", cfg.Merge.MessageFormat)
	}

	// Verify default watch config
	if cfg.Watch.DebounceMs != 500 {
		t.Errorf("Watch.DebounceMs = %d, want 500", cfg.Watch.DebounceMs)
	}
	if len(cfg.Watch.IgnoreDirs) == 0 {
		t.Error("Watch.IgnoreDirs should not be empty by default")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("Logging.MaxBackups = %d, want 3", cfg.Logging.MaxBackups)
	}

	// Verify default audit config
	if !cfg.Audit.Enabled {
		t.Error("Audit.Enabled should be true by default")
	}
	if cfg.Audit.MaxSizeMB != 10 {
		t.Errorf("Audit.MaxSizeMB = %d, want 10", cfg.Audit.MaxSizeMB)
	}
	if cfg.Audit.MaxBackups != 3 {
		t.Errorf("Audit.MaxBackups = %d, want 3", cfg.Audit.MaxBackups)
	}
	if cfg.Audit.Compress {
		t.Error("Audit.Compress should be false by default")
	}

	// Verify default paths config
	if cfg.Paths.WorktreeDir != "" {
		t.Errorf("Paths.WorktreeDir = %q, want empty", cfg.Paths.WorktreeDir)
	}

	// Verify default scopes
	if cfg.Scopes == nil {
		t.Error("Scopes should be an empty map, not nil")
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	tests := []struct {
		name       string
		debounceMs int
		want       time.Duration
	}{
		{"default", 500, 500 * time.Millisecond},
		{"one second", 1000, time.Second},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := WatchConfig{DebounceMs: tt.debounceMs}
			if got := cfg.Debounce(); got != tt.want {
				t.Errorf("Debounce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathsConfig_ResolveWorktreeDir(t *testing.T) {
	tests := []struct {
		name        string
		worktreeDir string
		baseDir     string
		want        string
	}{
		{
			name:        "empty uses default",
			worktreeDir: "",
			baseDir:     "/repo",
			want:        filepath.Join("/repo", ".omc", "worktrees"),
		},
		{
			name:        "absolute path used as-is",
			worktreeDir: "/fast-disk/worktrees",
			baseDir:     "/repo",
			want:        "/fast-disk/worktrees",
		},
		{
			name:        "relative path resolved against base",
			worktreeDir: "trees",
			baseDir:     "/repo",
			want:        filepath.Join("/repo", "trees"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := PathsConfig{WorktreeDir: tt.worktreeDir}
			if got := cfg.ResolveWorktreeDir(tt.baseDir); got != tt.want {
				t.Errorf("ResolveWorktreeDir(%q) = %q, want %q", tt.baseDir, got, tt.want)
			}
		})
	}
}

func TestPathsConfig_ResolveWorktreeDir_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("home directory unavailable")
	}

	cfg := PathsConfig{WorktreeDir: "~/worktrees"}
	want := filepath.Join(home, "worktrees")
	if got := cfg.ResolveWorktreeDir("/repo"); got != want {
		t.Errorf("ResolveWorktreeDir = %q, want %q", got, want)
	}
}

func TestPathsConfig_ResolveLogDir(t *testing.T) {
	cfg := PathsConfig{}
	want := filepath.Join("/repo", ".omc", "logs")
	if got := cfg.ResolveLogDir("/repo"); got != want {
		t.Errorf("ResolveLogDir = %q, want %q", got, want)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("respects XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		want := filepath.Join("/custom/config", "omc")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})

	t.Run("falls back to home config", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("home directory unavailable")
		}
		want := filepath.Join(home, ".config", "omc")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	want := filepath.Join("/custom/config", "omc", "config.yaml")
	if got := ConfigFile(); got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}

func TestGet(t *testing.T) {
	// Without any configuration loaded, Get should still return a usable
	// config rather than nil.
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
}
