package repositories

import "fmt"

type notFoundError struct {
	key string
}

func (e *notFoundError) Error() string       { return fmt.Sprintf("repository: %s not found", e.key) }
func (e *notFoundError) IsNotFound() bool    { return true }
func (e *notFoundError) IsUnavailable() bool { return false }

// NewNotFoundError builds a not-found classified repository error for the key.
func NewNotFoundError(key string) RepositoryError {
	return &notFoundError{key: key}
}

type unavailableError struct {
	key string
	err error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("repository: %s unavailable: %v", e.key, e.err)
}
func (e *unavailableError) Unwrap() error       { return e.err }
func (e *unavailableError) IsNotFound() bool    { return false }
func (e *unavailableError) IsUnavailable() bool { return true }

// NewUnavailableError wraps a backend failure with unavailable classification.
func NewUnavailableError(key string, err error) RepositoryError {
	return &unavailableError{key: key, err: err}
}
