// Package apperr defines the error taxonomy shared by the HTTP layer and
// the repositories.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated marks a missing, malformed or unverifiable bearer
	// token. Maps to 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound marks a row that does not exist for the caller. A row owned
	// by someone else is reported with the same error so callers cannot probe
	// for existence. Maps to 404.
	ErrNotFound = errors.New("not found")
)

// FieldError is one violated constraint on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field constraint of a request, not
// just the first. Maps to 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Misconfigured marks absent required configuration (database DSN, token
// verification key). Distinct from an auth failure: maps to 500.
type Misconfigured struct {
	Detail string
}

func (e *Misconfigured) Error() string {
	return "backend misconfigured: " + e.Detail
}

// Upstream wraps a storage-layer error that is not otherwise classified.
// Maps to 500; never retried here.
type Upstream struct {
	Op  string
	Err error
}

func (e *Upstream) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Upstream) Unwrap() error { return e.Err }
