package lisp

import (
	"bytes"
	"fmt"
)

// ErrorKind enumerates the error categories from spec.md §7. lumen raises
// errors as first-class Values (TError) rather than Go errors that unwind
// the Go call stack, so that userland can eventually catch them via
// call/cc-implemented handlers; Go errors are reserved for plumbing
// failures (reader, heap, file I/O) that never reach lumen code directly.
type ErrorKind uint8

const (
	ErrLexParse ErrorKind = iota
	ErrSyntax
	ErrUnbound
	ErrType
	ErrArity
	ErrArithmetic
	ErrContinuation
	ErrUser
	ErrInterrupted
)

var errorKindNames = [...]string{
	ErrLexParse:     "lex-error",
	ErrSyntax:       "syntax-error",
	ErrUnbound:      "unbound-error",
	ErrType:         "type-error",
	ErrArity:        "arity-error",
	ErrArithmetic:   "arithmetic-error",
	ErrContinuation: "continuation-error",
	ErrUser:         "user-error",
	ErrInterrupted:  "interrupted",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "error"
}

// errorObj is the heap payload of a TError value.
type errorObj struct {
	kind      ErrorKind
	message   string
	irritants []Value
	span      SourceSpan
}

func (e *errorObj) traceRefs(refs []Value) []Value {
	return append(refs, e.irritants...)
}

// NewError constructs a condition value of the given kind.
func (rt *Runtime) NewError(kind ErrorKind, message string, irritants ...Value) Value {
	h := rt.Heap.alloc(&errorObj{kind: kind, message: message, irritants: irritants})
	return fromHandle(TError, h)
}

// Errorf constructs a condition value with a formatted message.
func (rt *Runtime) Errorf(kind ErrorKind, format string, args ...interface{}) Value {
	return rt.NewError(kind, fmt.Sprintf(format, args...))
}

func (rt *Runtime) errorObj(v Value) *errorObj { return rt.Heap.get(heapHandle(v)).(*errorObj) }

// IsError reports whether v is a condition value.
func IsError(v Value) bool { return v.Tag == TError }

// ErrorKindOf returns the kind of a condition value.
func (rt *Runtime) ErrorKindOf(v Value) ErrorKind { return rt.errorObj(v).kind }

// ErrorMessage returns the message of a condition value.
func (rt *Runtime) ErrorMessage(v Value) string { return rt.errorObj(v).message }

// ErrorIrritants returns the irritant list of a condition value.
func (rt *Runtime) ErrorIrritants(v Value) []Value {
	src := rt.errorObj(v).irritants
	cp := make([]Value, len(src))
	copy(cp, src)
	return cp
}

// withSpan attaches source position information to an error value for
// diagnostic printing, mirroring elps's LError.Source/LError.Stack fields.
func (rt *Runtime) withSpan(v Value, span SourceSpan) Value {
	if v.Tag != TError {
		return v
	}
	e := rt.errorObj(v)
	if e.span == (SourceSpan{}) {
		e.span = span
	}
	return v
}

// FormatError renders a condition value the way elps renders LError:
// "file:line: kind: message irritant irritant...", each irritant in
// write form after a space; the "file:line: " prefix appears only when the
// error carries a span with a file name.
func (rt *Runtime) FormatError(v Value) string {
	e := rt.errorObj(v)
	var buf bytes.Buffer
	if e.span.File != "" {
		fmt.Fprintf(&buf, "%s:%d: ", e.span.File, e.span.Line)
	}
	fmt.Fprintf(&buf, "%s: %s", e.kind, e.message)
	for _, irritant := range e.irritants {
		buf.WriteByte(' ')
		buf.WriteString(rt.WriteString(irritant))
	}
	return buf.String()
}
