package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no user matches the given userId
	ErrNotFound = errors.New("User not found")

	// ErrAlreadyExists is returned when creating a user whose userId is taken
	ErrAlreadyExists = errors.New("User already exists in the database!")
)

// Kind classifies an error for the boundary layer
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindValidation
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation"
	case KindConstraint:
		return "constraint"
	default:
		return "internal"
	}
}

// KindOf reports which class of the error taxonomy err belongs to
func KindOf(err error) Kind {
	var validationErr *ValidationError
	var constraintErr *ConstraintError
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &constraintErr):
		return KindConstraint
	default:
		return KindInternal
	}
}

// Issue is a single field violation found by the payload schema
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every violation found in an inbound payload
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConstraintError reports a write-time field constraint violation,
// including unique index violations raised by the store.
type ConstraintError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ConstraintError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s violates %s constraint", e.Field, e.Rule)
}

// NewDuplicateKeyError builds the constraint error for a unique index violation
func NewDuplicateKeyError(field string, value any) *ConstraintError {
	return &ConstraintError{
		Field:   field,
		Rule:    "unique",
		Value:   value,
		Message: fmt.Sprintf("%s %v is already taken", field, value),
	}
}
