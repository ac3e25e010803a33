package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// branchPrefixRegex validates branch prefix characters
// Branch names should start with alphanumeric and can contain alphanumeric, hyphen, underscore
var branchPrefixRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBranch()...)
	errors = append(errors, c.validateMerge()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateAudit()...)
	errors = append(errors, c.validateScopes()...)

	return errors
}

// validateBranch validates the BranchConfig
func (c *Config) validateBranch() []ValidationError {
	var errors []ValidationError

	if c.Branch.Prefix != "" && !branchPrefixRegex.MatchString(c.Branch.Prefix) {
		errors = append(errors, ValidationError{
			Field:   "branch.prefix",
			Value:   c.Branch.Prefix,
			Message: "must start with a letter and contain only letters, digits, hyphens, and underscores",
		})
	}

	return errors
}

// validateMerge validates the MergeConfig
func (c *Config) validateMerge() []ValidationError {
	var errors []ValidationError

	if c.Merge.MessageFormat != "" && strings.Count(c.Merge.MessageFormat, "%s") != 2 {
		errors = append(errors, ValidationError{
			Field:   "merge.message_format",
			Value:   c.Merge.MessageFormat,
			Message: "must contain exactly two %s verbs (worker branch, base branch)",
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateAudit validates the AuditConfig
func (c *Config) validateAudit() []ValidationError {
	var errors []ValidationError

	if c.Audit.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "audit.max_size_mb",
			Value:   c.Audit.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Audit.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "audit.max_backups",
			Value:   c.Audit.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateScopes validates the per-worker ScopeConfig entries
func (c *Config) validateScopes() []ValidationError {
	var errors []ValidationError

	for worker, scope := range c.Scopes {
		if worker == "" {
			errors = append(errors, ValidationError{
				Field:   "scopes",
				Value:   worker,
				Message: "scope worker name must not be empty",
			})
			continue
		}
		for _, pattern := range scope.AllowedPaths {
			if pattern == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("scopes.%s.allowed_paths", worker),
					Value:   pattern,
					Message: "glob pattern must not be empty",
				})
			}
		}
		for _, pattern := range scope.DeniedPaths {
			if pattern == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("scopes.%s.denied_paths", worker),
					Value:   pattern,
					Message: "glob pattern must not be empty",
				})
			}
		}
		for _, pattern := range scope.AllowedCommands {
			if pattern == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("scopes.%s.allowed_commands", worker),
					Value:   pattern,
					Message: "glob pattern must not be empty",
				})
			}
		}
	}

	return errors
}
