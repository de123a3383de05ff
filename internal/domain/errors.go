package domain

import (
	"fmt"

	"github.com/soba-dev/soba/pkg/errors"
)

// NewIssueNotFoundError builds a not-found error for a missing Issue.
func NewIssueNotFoundError(number int) error {
	err := errors.NewNotFoundError(fmt.Sprintf("issue #%d not found", number))
	return errors.WithContext(err, "issue_number", number)
}

// NewValidationError builds a validation error for a rejected field.
func NewValidationError(field, message string) error {
	err := errors.NewValidationError(fmt.Sprintf("field '%s' is invalid: %s", field, message))
	return errors.WithContext(err, "field", field)
}

// NewPhaseTransitionError builds a conflict error for a rejected label
// transition — used when ValidateTransition(from, to) returns false for an
// edge the caller expected to be legal.
func NewPhaseTransitionError(from, to string, issueNum int) error {
	msg := fmt.Sprintf("cannot transition issue #%d from phase '%s' to '%s'", issueNum, from, to)
	var err error = errors.NewConflictError(msg)
	err = errors.WithContext(err, "from", from)
	err = errors.WithContext(err, "to", to)
	err = errors.WithContext(err, "issue", issueNum)
	return err
}

// WrapDomainError wraps err as an internal error with additional message.
func WrapDomainError(err error, message string) error {
	return errors.WrapInternal(err, message)
}
