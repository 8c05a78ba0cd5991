package models

import (
	"errors"
	"fmt"
	"strings"
)

// Model validation and operation errors
var (
	// General errors
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflicting state")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInternal                = errors.New("internal error")

	// Questionnaire errors
	ErrQuestionnaireNotFound       = errors.New("questionnaire not found")
	ErrQuestionnaireNotPublished   = errors.New("cannot assign unpublished questionnaire")
	ErrQuestionnaireHasAssignments = errors.New("questionnaire has assignments and cannot be deleted")
	ErrInvalidQuestionnaireStatus  = errors.New("invalid questionnaire status")

	// Question errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrInvalidQuestionType    = errors.New("invalid question type")
	ErrMissingQuestionOptions = errors.New("multiple choice questions require options")
	ErrInvalidScoreRange      = errors.New("min_score must be lower than max_score")
	ErrDuplicateQuestionOrder = errors.New("question order already used in questionnaire")

	// Assignment errors
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentExists       = errors.New("assignment already exists for this pairing")
	ErrAssignmentCompleted    = errors.New("completed assignments cannot be deleted")
	ErrAssignmentTerminal     = errors.New("assignment is completed or cancelled")
	ErrAssignmentNotPending   = errors.New("assignment has already been started")
	ErrAssignmentStateChanged = errors.New("assignment was changed by another request")
	ErrInvalidAssignmentState = errors.New("invalid assignment status")
	ErrSelfEvaluation         = errors.New("evaluator and evaluatee must differ unless self evaluation is requested")
	ErrNotAssignedEvaluator   = errors.New("only the assigned evaluator may perform this action")
	ErrAdminRoleRequired      = errors.New("administrative role required")
)

// FieldError describes a single offending input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every offending field of a rejected input
// #IMPLEMENTATION_DECISION: all checks run before reporting so callers can render every problem at once
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// Add records an offending field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field was recorded
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns the error only when fields were recorded
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalidInput) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InternalError wraps an unexpected failure raised while a write was in progress
type InternalError struct {
	Op  string
	Err error
}

// NewInternalError wraps err unless it already carries one of the expected kinds
func NewInternalError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsExpectedError(err) {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause
func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInternal) match
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// IsNotFoundError returns true if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionnaireNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAssignmentNotFound)
}

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrInvalidQuestionnaireStatus) ||
		errors.Is(err, ErrInvalidQuestionType) ||
		errors.Is(err, ErrMissingQuestionOptions) ||
		errors.Is(err, ErrInvalidScoreRange) ||
		errors.Is(err, ErrInvalidAssignmentState) ||
		errors.Is(err, ErrSelfEvaluation)
}

// IsAuthError returns true if the error is an authentication/authorization error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotAssignedEvaluator) ||
		errors.Is(err, ErrAdminRoleRequired)
}

// IsConflictError returns true if the error is a conflict/duplicate error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuestionnaireNotPublished) ||
		errors.Is(err, ErrQuestionnaireHasAssignments) ||
		errors.Is(err, ErrDuplicateQuestionOrder) ||
		errors.Is(err, ErrAssignmentExists) ||
		errors.Is(err, ErrAssignmentCompleted) ||
		errors.Is(err, ErrAssignmentTerminal) ||
		errors.Is(err, ErrAssignmentNotPending) ||
		errors.Is(err, ErrAssignmentStateChanged)
}

// IsInternalError returns true if the error wraps an unexpected failure
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

// IsExpectedError returns true for the caller-input error kinds
func IsExpectedError(err error) bool {
	return IsValidationError(err) ||
		IsNotFoundError(err) ||
		IsConflictError(err) ||
		IsAuthError(err)
}
