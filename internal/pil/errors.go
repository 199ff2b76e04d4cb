// internal/pil/errors.go
package pil

import "fmt"

// ValidationError reports malformed or out-of-range input. It is raised
// before any external call is made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidQuantityError is returned when fewer than one token is requested.
type InvalidQuantityError struct {
	Quantity int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Quantity)
}

// AmbiguousOverrideWarning is non-fatal. It is produced when a description
// matches no rule or matches several rules that set the same field.
type AmbiguousOverrideWarning struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (w AmbiguousOverrideWarning) String() string {
	if w.Field == "" {
		return w.Message
	}
	return fmt.Sprintf("%s (%s): %s", w.Field, w.Rule, w.Message)
}
