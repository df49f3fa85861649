package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrPollNotFound is returned when a poll is not found
	ErrPollNotFound = errors.New("poll not found")

	// ErrOptionNotFound is returned when an option does not exist on a poll
	ErrOptionNotFound = errors.New("option not found")

	// ErrDuplicateTitle is returned when creating or renaming a poll to a title that already exists
	ErrDuplicateTitle = errors.New("poll title already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// PollNotFoundError represents a poll not found error with context
type PollNotFoundError struct {
	PollID int64
}

func (e *PollNotFoundError) Error() string {
	return fmt.Sprintf("poll with ID %d not found", e.PollID)
}

func (e *PollNotFoundError) Is(target error) bool {
	return target == ErrPollNotFound
}

// NewPollNotFoundError creates a new PollNotFoundError
func NewPollNotFoundError(pollID int64) *PollNotFoundError {
	return &PollNotFoundError{PollID: pollID}
}

// OptionNotFoundError represents an option not found error with context
type OptionNotFoundError struct {
	PollID   int64
	OptionID int64
}

func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("option with ID %d not found on poll %d", e.OptionID, e.PollID)
}

func (e *OptionNotFoundError) Is(target error) bool {
	return target == ErrOptionNotFound
}

// NewOptionNotFoundError creates a new OptionNotFoundError
func NewOptionNotFoundError(pollID, optionID int64) *OptionNotFoundError {
	return &OptionNotFoundError{PollID: pollID, OptionID: optionID}
}

// DuplicateTitleError represents a duplicate poll title error with context
type DuplicateTitleError struct {
	Title string
}

func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf("poll with title '%s' already exists", e.Title)
}

func (e *DuplicateTitleError) Is(target error) bool {
	return target == ErrDuplicateTitle
}

// NewDuplicateTitleError creates a new DuplicateTitleError
func NewDuplicateTitleError(title string) *DuplicateTitleError {
	return &DuplicateTitleError{Title: title}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
