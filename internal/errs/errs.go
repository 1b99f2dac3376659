// Package errs defines the error kinds of the contact directory and how they map to HTTP
// responses.
//
// Three kinds exist: ValidationError for malformed or incomplete input, NotFoundError for an
// operation on an unknown id, and StorageError for a failing database. Callers classify with
// errors.As, so kinds survive wrapping with fmt.Errorf and %w.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is a validation problem with a single request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports request data that is malformed or misses required fields.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Error)
	}
	return e.Message + ": " + strings.Join(parts, ", ")
}

// NewValidationError returns a validation error with a message and optional field details.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError reports that no contact exists with the given id.
type NotFoundError struct {
	Id string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact %q not found", e.Id)
}

// StorageError wraps a failure of the underlying database. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError for the named operation. It returns nil for a nil error and
// leaves errors that already carry one of the kinds of this package untouched.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var storageErr *StorageError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// Response is the JSON body of every failed request.
type Response struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HTTP maps an error to a status code and response body. Unclassified errors are treated like
// storage errors: the client only sees a generic message.
func HTTP(err error) (int, Response) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, Response{
			Message: validationErr.Message,
			Errors:  validationErr.Fields,
		}
	}
	if IsNotFound(err) {
		return http.StatusNotFound, Response{Message: "contact not found"}
	}
	return http.StatusInternalServerError, Response{Message: http.StatusText(http.StatusInternalServerError)}
}
