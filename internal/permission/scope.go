// Package permission implements advisory glob-based scoping for worker
// branches. A scope describes which paths a worker is expected to touch and
// which commands it is expected to run. Scopes are advisory: they are
// rendered into worker instructions and used to flag out-of-scope changes,
// they do not enforce anything at the filesystem or process level.
package permission

import (
	"github.com/gobwas/glob"

	"github.com/FScoward/oh-my-claudecode/internal/config"
	"github.com/FScoward/oh-my-claudecode/internal/errors"
)

// Scope is a compiled advisory permission scope for one worker.
type Scope struct {
	worker          string
	allowedPaths    []glob.Glob
	deniedPaths     []glob.Glob
	allowedCommands []glob.Glob
	raw             config.ScopeConfig
}

// NewScope compiles a worker's scope configuration. Path patterns use '/'
// as a separator, so '*' matches within one path segment and '**' crosses
// segments. Command patterns have no separator.
func NewScope(worker string, cfg config.ScopeConfig) (*Scope, error) {
	scope := &Scope{
		worker: worker,
		raw:    cfg,
	}

	var err error
	if scope.allowedPaths, err = compileAll(cfg.AllowedPaths, '/'); err != nil {
		return nil, errors.NewValidationError("invalid allowed path pattern: " + err.Error()).
			WithField("scopes." + worker + ".allowed_paths")
	}
	if scope.deniedPaths, err = compileAll(cfg.DeniedPaths, '/'); err != nil {
		return nil, errors.NewValidationError("invalid denied path pattern: " + err.Error()).
			WithField("scopes." + worker + ".denied_paths")
	}
	if scope.allowedCommands, err = compileAll(cfg.AllowedCommands); err != nil {
		return nil, errors.NewValidationError("invalid command pattern: " + err.Error()).
			WithField("scopes." + worker + ".allowed_commands")
	}

	return scope, nil
}

func compileAll(patterns []string, separators ...rune) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, separators...)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Worker returns the worker name this scope belongs to.
func (s *Scope) Worker() string {
	return s.worker
}

// Config returns the raw pattern configuration the scope was compiled from.
func (s *Scope) Config() config.ScopeConfig {
	return s.raw
}

// AllowsPath reports whether the worker is expected to touch path. Denied
// patterns win over allowed ones. An empty allowed list permits every path
// not explicitly denied.
func (s *Scope) AllowsPath(path string) bool {
	for _, g := range s.deniedPaths {
		if g.Match(path) {
			return false
		}
	}
	if len(s.allowedPaths) == 0 {
		return true
	}
	for _, g := range s.allowedPaths {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// AllowsCommand reports whether the worker is expected to run command. An
// empty allowed list permits every command.
func (s *Scope) AllowsCommand(command string) bool {
	if len(s.allowedCommands) == 0 {
		return true
	}
	for _, g := range s.allowedCommands {
		if g.Match(command) {
			return true
		}
	}
	return false
}

// OutOfScope filters paths down to those the scope does not allow, in input
// order. Useful for flagging a worker's changed files after the fact.
func (s *Scope) OutOfScope(paths []string) []string {
	var violations []string
	for _, path := range paths {
		if !s.AllowsPath(path) {
			violations = append(violations, path)
		}
	}
	return violations
}

// Set holds the compiled scopes for all configured workers.
type Set struct {
	scopes map[string]*Scope
}

// NewSet compiles every scope in the configuration map.
func NewSet(cfgs map[string]config.ScopeConfig) (*Set, error) {
	scopes := make(map[string]*Scope, len(cfgs))
	for worker, cfg := range cfgs {
		scope, err := NewScope(worker, cfg)
		if err != nil {
			return nil, err
		}
		scopes[worker] = scope
	}
	return &Set{scopes: scopes}, nil
}

// Lookup returns the scope for a worker. Workers without a configured scope
// get a permissive default that allows everything.
func (s *Set) Lookup(worker string) *Scope {
	if scope, ok := s.scopes[worker]; ok {
		return scope
	}
	return &Scope{worker: worker}
}

// Workers returns the workers that have an explicitly configured scope.
func (s *Set) Workers() []string {
	workers := make([]string, 0, len(s.scopes))
	for worker := range s.scopes {
		workers = append(workers, worker)
	}
	return workers
}
