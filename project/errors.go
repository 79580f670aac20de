package project

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError reports a document field that could not be turned into a rig.
type FieldError struct {
	Field  string // dotted path, e.g. graph.nodes[3].params.amount
	Reason string
	Err    error // underlying cause, if any
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %q: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// DecodeError aggregates every FieldError found while building a rig.
type DecodeError struct {
	Errors []error
}

func (e *DecodeError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d decode errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() []error { return e.Errors }

// FieldErrors returns the individual failures if err is a DecodeError.
// Otherwise returns nil.
func FieldErrors(err error) []error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Errors
	}
	return nil
}

// errorList collects field errors while a document is processed.
type errorList []error

func (l *errorList) add(field, reason string, err error) {
	*l = append(*l, &FieldError{Field: field, Reason: reason, Err: err})
}

func (l errorList) err() error {
	if len(l) == 0 {
		return nil
	}
	return &DecodeError{Errors: l}
}
