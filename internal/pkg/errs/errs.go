package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error unwraps to exactly one of them.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrStateConflict     = errors.New("state conflict")
	ErrPartialFailure    = errors.New("partial failure")
	ErrExternalProvider  = errors.New("external provider failure")
)

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError for the given parameter and identifier.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping the underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError for the given parameter.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping the underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of its inclusive [Min, Max] bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping the underlying cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError for the given parameter.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping the underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// PermissionDeniedError reports a principal that may not perform an action on a resource.
type PermissionDeniedError struct {
	Subject  string
	Resource string
	Action   string
	Cause    error
}

// NewPermissionDeniedError creates a PermissionDeniedError.
func NewPermissionDeniedError(subject, resource, action string) *PermissionDeniedError {
	return &PermissionDeniedError{Subject: subject, Resource: resource, Action: action}
}

// NewPermissionDeniedErrorWithCause creates a PermissionDeniedError wrapping the underlying cause.
func NewPermissionDeniedErrorWithCause(subject, resource, action string, cause error) *PermissionDeniedError {
	return &PermissionDeniedError{Subject: subject, Resource: resource, Action: action, Cause: cause}
}

func (e *PermissionDeniedError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "anonymous"
	}
	msg := fmt.Sprintf("%s: %s may not %s %s", ErrPermissionDenied, subject, e.Action, e.Resource)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// StateConflictError reports a state transition that is not allowed from the current state.
type StateConflictError struct {
	Entity string
	From   string
	To     string
	Cause  error
}

// NewStateConflictError creates a StateConflictError for a rejected From -> To transition.
func NewStateConflictError(entity, from, to string) *StateConflictError {
	return &StateConflictError{Entity: entity, From: from, To: to}
}

// NewStateConflictErrorWithCause creates a StateConflictError wrapping the underlying cause.
func NewStateConflictErrorWithCause(entity, from, to string, cause error) *StateConflictError {
	return &StateConflictError{Entity: entity, From: from, To: to, Cause: cause}
}

func (e *StateConflictError) Error() string {
	msg := fmt.Sprintf("%s: %s cannot move from %s to %s", ErrStateConflict, e.Entity, e.From, e.To)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// PartialFailureError reports a compound operation where some writes were committed
// and at least one was not. Completed lists the steps that are durable; Failed is the
// step that could not be applied. Re-running the operation re-drives the remaining steps.
type PartialFailureError struct {
	Operation string
	Completed []string
	Failed    string
	Cause     error
}

// NewPartialFailureError creates a PartialFailureError.
func NewPartialFailureError(operation string, completed []string, failed string, cause error) *PartialFailureError {
	return &PartialFailureError{Operation: operation, Completed: completed, Failed: failed, Cause: cause}
}

func (e *PartialFailureError) Error() string {
	msg := fmt.Sprintf("%s: %s completed [%s], failed at %s",
		ErrPartialFailure, e.Operation, strings.Join(e.Completed, ", "), e.Failed)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause so callers can match either.
func (e *PartialFailureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPartialFailure}
	}
	return []error{ErrPartialFailure, e.Cause}
}

// ExternalProviderError reports a failure of a geocoding or notification collaborator.
type ExternalProviderError struct {
	Provider string
	Cause    error
}

// NewExternalProviderError creates an ExternalProviderError.
func NewExternalProviderError(provider string, cause error) *ExternalProviderError {
	return &ExternalProviderError{Provider: provider, Cause: cause}
}

func (e *ExternalProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrExternalProvider, e.Provider, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExternalProvider, e.Provider)
}

func (e *ExternalProviderError) Unwrap() error {
	return ErrExternalProvider
}

func sanitize(value any) string {
	s := fmt.Sprintf("%v", value)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
