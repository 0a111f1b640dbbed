package portfolio

import (
	"errors"
	"fmt"
)

// ValidationError is a local precondition failure. It is returned before
// any store call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// OpError is a collaborator failure caught at an operation boundary. Its
// Message is safe to show to users.
type OpError struct {
	Action string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("failed %s: %v", e.Action, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Message is the user-facing description of the failure.
func (e *OpError) Message() string {
	return fmt.Sprintf("Error %s. Please try again.", e.Action)
}
