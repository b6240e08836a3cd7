package swarm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by Step before Initialize succeeded.
	ErrNotInitialized = errors.New("optimizer not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("optimizer already initialized")
	// ErrDone is returned by Step once the stopping criterion has fired.
	ErrDone = errors.New("optimizer already done")
)

// ErrInvalidConfig matches every *ConfigError.
// Use errors.Is(err, ErrInvalidConfig) to check for this error.
var ErrInvalidConfig = &ConfigError{}

// ConfigError reports an optimizer configuration that cannot run.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid optimizer configuration"
	}
	return fmt.Sprintf("invalid optimizer configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
