// Package errs provides standardized error types for the dispatch service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used by every layer of the application.
//
// The package includes error types for the failure classes the service surfaces:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: input validation
//   - ObjectNotFoundError: a referenced driver, tracking record or order is absent
//   - PermissionDeniedError: the principal on the context may not perform the operation
//   - StateConflictError: a transition is not allowed from the current state
//   - PartialFailureError: a compound operation committed some writes but not all
//   - ExternalProviderError: a geocoding or notification collaborator failed
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g., ErrObjectNotFound) usable with errors.Is
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel
package errs
