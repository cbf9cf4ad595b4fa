// Package errors carries error helpers shared across the shell: multi-error
// collection for shutdown paths and classification of transient failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// MultiError collects errors from multi-step operations such as shutdown,
// where later steps must run even when earlier ones fail.
type MultiError struct {
	errs []error
}

// Append adds an error to the collection. Nil errors are ignored.
func (m *MultiError) Append(err error) {
	if err != nil {
		m.errs = append(m.errs, err)
	}
}

// ErrorOrNil returns nil when no errors were collected, the single error
// when there is one, and the combined MultiError otherwise.
func (m *MultiError) ErrorOrNil() error {
	switch len(m.errs) {
	case 0:
		return nil
	case 1:
		return m.errs[0]
	default:
		return m
	}
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	msgs := make([]string, len(m.errs))
	for i, err := range m.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(m.errs), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errs
}

// TransientError marks a failure that is safe to retry or ignore during
// shutdown, such as a timeout waiting for a component to stop.
type TransientError struct {
	Op  string
	Err error
}

// NewTransientError wraps err as transient for the named operation.
func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v (transient)", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether any error in err's chain is transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
