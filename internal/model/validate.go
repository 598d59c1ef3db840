package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateRequest checks a Request for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the request is valid.
func ValidateRequest(r *Request) error {
	var ve ValidationError

	if strings.TrimSpace(r.AgencyID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "agency_id", Message: "is required"})
	}
	if strings.TrimSpace(r.Requester) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "requester", Message: "is required"})
	}
	if !r.State.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "state",
			Message: fmt.Sprintf("invalid value %q", r.State),
		})
	}

	if ferrs := validateScope(r.Scope); len(ferrs) > 0 {
		ve.Errors = append(ve.Errors, ferrs...)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateScope(sc RequestScope) []FieldError {
	var errs []FieldError

	if len(normalizeTerms(sc.Subject)) == 0 {
		errs = append(errs, FieldError{Field: "scope.subject", Message: "at least one subject keyword is required"})
	}
	if len(normalizeTerms(sc.RecordTypes)) == 0 {
		errs = append(errs, FieldError{Field: "scope.record_types", Message: "at least one record type is required"})
	}
	if sc.DateFrom.IsZero() || sc.DateTo.IsZero() {
		errs = append(errs, FieldError{Field: "scope.date_range", Message: "date_from and date_to are required"})
	} else if sc.DateTo.Before(sc.DateFrom) {
		errs = append(errs, FieldError{
			Field:   "scope.date_range",
			Message: fmt.Sprintf("date_to %s precedes date_from %s", sc.DateTo.Format("2006-01-02"), sc.DateFrom.Format("2006-01-02")),
		})
	}
	if len([]rune(sc.Description)) > 10000 {
		errs = append(errs, FieldError{Field: "scope.description", Message: "must be 10000 characters or fewer"})
	}

	return errs
}

// ValidateItem checks a CorrespondenceItem before it is recorded.
func ValidateItem(it *CorrespondenceItem) error {
	var ve ValidationError

	if strings.TrimSpace(it.RequestID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "request_id", Message: "is required"})
	}
	if !it.Direction.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "direction",
			Message: fmt.Sprintf("invalid value %q", it.Direction),
		})
	}
	if !it.Classification.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "classification",
			Message: fmt.Sprintf("invalid value %q", it.Classification),
		})
	}
	if it.Timestamp.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "timestamp", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
