package domain

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NewValidationError converts an ozzo-validation result into a ValidationError with
// one FieldError per invalid field, sorted by field name. Nil stays nil, and errors
// that are not validation results are wrapped with ErrValidation.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return &ValidationError{Message: err.Error()}
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		fields = append(fields, FieldError{Field: field, Message: fieldErr.Error()})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &ValidationError{Message: "request validation failed", Fields: fields}
}
