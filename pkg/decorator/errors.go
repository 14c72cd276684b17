package decorator

import (
	"errors"
	"fmt"
)

// ErrMethodNotFound matches every *MethodNotFoundError through errors.Is.
var ErrMethodNotFound = errors.New("decorator: method not found")

// ConfigurationError reports an invalid presenter definition. It is returned
// at definition time and never at call time.
type ConfigurationError struct {
	Decorator string
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	msg := "decorator: " + e.Reason
	if e.Decorator != "" {
		msg = fmt.Sprintf("decorator: %s: %s", e.Decorator, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ResolutionError reports that no definition is registered for a model type
// and version anywhere in the model type's ancestor chain.
type ResolutionError struct {
	Model   string
	Version string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("decorator: no decorator registered for %s (version %q)", e.Model, e.Version)
}

// MethodNotFoundError reports a call to a member that is neither defined on
// the presenter nor forwarded to the model.
type MethodNotFoundError struct {
	Decorator string
	Name      string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("decorator: undefined method %q for %s", e.Name, e.Decorator)
}

// Is matches ErrMethodNotFound.
func (e *MethodNotFoundError) Is(target error) bool {
	return target == ErrMethodNotFound
}

func configError(decorator, reason string, err error) error {
	return &ConfigurationError{Decorator: decorator, Reason: reason, Err: err}
}
