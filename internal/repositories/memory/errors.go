// Package memory holds map-backed repositories for local development and
// tests. Every read returns copies so callers cannot mutate stored state.
package memory

import "fmt"

// Error implements repositories.RepositoryError.
type Error struct {
	op       string
	msg      string
	notFound bool
	conflict bool
}

func (e *Error) Error() string       { return fmt.Sprintf("%s: %s", e.op, e.msg) }
func (e *Error) IsNotFound() bool    { return e.notFound }
func (e *Error) IsConflict() bool    { return e.conflict }
func (e *Error) IsUnavailable() bool { return false }

func notFound(op, what, id string) error {
	return &Error{op: op, msg: fmt.Sprintf("%s %q not found", what, id), notFound: true}
}

func conflict(op, what, id string) error {
	return &Error{op: op, msg: fmt.Sprintf("%s %q already exists", what, id), conflict: true}
}
