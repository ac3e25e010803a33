// Package logging provides structured logging for omc coordination runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for post-hoc analysis of merge runs. Each
// coordination run produces one log stream; child loggers carry the team,
// worker, and phase so a single batch can be reconstructed from the file.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (team, worker, phase)
//   - Size-based log rotation with numbered backups
//   - Optional gzip compression for rotated logs
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses slog internally; the [RotatingWriter] type uses a mutex to protect
// file operations during rotation. Child loggers created via With* methods
// share the underlying writer safely.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	mergeLog := logger.WithTeam("core").WithPhase("merge")
//	mergeLog.Info("merge attempt finished", "branch", branch, "success", true)
package logging
