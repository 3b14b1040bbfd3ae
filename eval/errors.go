// Package eval implements the tree-walking evaluator that executes a parsed
// ChimeraScript case against a variable Store and an HTTP Client.
package eval

import (
	"errors"
	"fmt"
	"strings"

	chimera "github.com/chimerascript/chimera"
)

// UndefinedVariableError is returned when a VariableRef's first component
// names nothing in the current Store.
type UndefinedVariableError struct {
	Span chimera.Span
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: undefined variable %q", e.Span.Start, e.Name)
}

// MissingFieldError is returned when a VariableRef's dotted path navigates
// through a field that does not exist on an object or http response.
type MissingFieldError struct {
	Span chimera.Span
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field in %s", e.Span.Start, e.Path)
}

// IndexOutOfBoundsError is returned by list indexing and by REMOVE/POP when
// the index falls outside the list's current bounds.
type IndexOutOfBoundsError struct {
	Span   chimera.Span
	Index  int64
	Length int64
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: index %d out of bounds for list of length %d", e.Span.Start, e.Index, e.Length)
}

// InvalidIndexKindError is returned when a list index operand is not an
// integer.
type InvalidIndexKindError struct {
	Span chimera.Span
	Kind chimera.Kind
}

func (e *InvalidIndexKindError) Error() string {
	return fmt.Sprintf("%s: index must be an integer, got %s", e.Span.Start, e.Kind)
}

// TypeError is returned when an operation's operand kinds are individually
// valid but not admissible for that operation (e.g. STATUS against a
// non-http_response, CONTAINS against a number).
type TypeError struct {
	Span chimera.Span
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Msg)
}

// AssertionFailedError is returned when an ASSERT statement's condition
// (after applying NOT if present) evaluates false.
type AssertionFailedError struct {
	Span    chimera.Span
	Message string
}

func (e *AssertionFailedError) Error() string {
	return fmt.Sprintf("%s: assertion failed: %s", e.Span.Start, e.Message)
}

// TransportError wraps a Client.Do failure: connection refused, timeout,
// DNS failure, or any other failure to obtain an HttpResponse at all. It is
// distinct from a non-2xx HttpResponse, which is a successful evaluation.
type TransportError struct {
	Span chimera.Span
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %s", e.Span.Start, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// wrapVariableError converts the sentinel errors returned by Store.Resolve
// and Val.Field into the typed, span-carrying error taxonomy.
func wrapVariableError(err error, ref *chimera.VariableRef) error {
	if err == nil {
		return nil
	}

	var outOfBounds *chimera.IndexOutOfBoundsDetail

	var invalidKind *chimera.InvalidIndexKindDetail

	switch {
	case errors.Is(err, chimera.ErrUndefinedVariable):
		return &UndefinedVariableError{Span: ref.Span(), Name: ref.Parts[0]}
	case errors.As(err, &outOfBounds):
		return &IndexOutOfBoundsError{Span: ref.Span(), Index: outOfBounds.Index, Length: outOfBounds.Length}
	case errors.As(err, &invalidKind):
		return &InvalidIndexKindError{Span: ref.Span(), Kind: chimera.KindStr}
	case errors.Is(err, chimera.ErrFieldNotFound), errors.Is(err, chimera.ErrNotFieldAccessible):
		return &MissingFieldError{Span: ref.Span(), Path: strings.Join(ref.Parts, ".")}
	default:
		return &TypeError{Span: ref.Span(), Msg: err.Error()}
	}
}
