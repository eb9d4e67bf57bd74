package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is.
var (
	// ErrValidation marks malformed input; state is left unchanged.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups of unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrPersistence marks storage failures.
	ErrPersistence = errors.New("persistence error")
	// ErrConfiguration marks fatal setup problems such as an undersized question pool.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidState marks a transition attempted against a completed or out-of-turn session.
	ErrInvalidState = errors.New("invalid state")
)

var (
	// ErrSessionNotFound is returned when a game session id is unknown.
	ErrSessionNotFound = fmt.Errorf("game session %w", ErrNotFound)
	// ErrQuestionNotFound is returned when a question id is not in the bank.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrUserNotFound is returned when a participant has not registered.
	ErrUserNotFound = fmt.Errorf("participant %w", ErrNotFound)
	// ErrBankNotFound is returned when a question bank cannot be loaded.
	ErrBankNotFound = fmt.Errorf("question bank %w", ErrNotFound)
	// ErrDuplicateResult is returned when a session's result was already submitted.
	ErrDuplicateResult = errors.New("result already submitted for session")
)

// Validationf wraps a formatted message with ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InvalidStatef wraps a formatted message with ErrInvalidState.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Configurationf wraps a formatted message with ErrConfiguration.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Persistence wraps a storage error with ErrPersistence and the failed operation.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
