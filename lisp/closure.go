package lisp

import "strconv"

// closureObj is a compiled lambda paired with the lexical Frame it closed
// over at creation time (spec.md §4.4's MAKE-CLOSURE instruction).
type closureObj struct {
	code   *CodeBlock
	frame  *Frame // nil for a closure over the global frame
	name   string // assigned by (define name (lambda ...)) for diagnostics
}

func (c *closureObj) traceRefs(refs []Value) []Value {
	if c.frame != nil {
		refs = c.frame.traceRoots(refs)
	}
	return refs
}

// MakeClosure allocates a closure Value over code, capturing frame.
func (rt *Runtime) MakeClosure(code *CodeBlock, frame *Frame) Value {
	h := rt.Heap.alloc(&closureObj{code: code, frame: frame})
	return fromHandle(TClosure, h)
}

func (rt *Runtime) closure(v Value) *closureObj {
	return rt.Heap.get(heapHandle(v)).(*closureObj)
}

// IsClosure reports whether v is a compiled procedure.
func IsClosure(v Value) bool { return v.Tag == TClosure }

// IsProcedure reports whether v can be applied: a closure, a primitive or
// a continuation.
func IsProcedure(v Value) bool { return v.Tag == TClosure || v.Tag == TPrimitive || v.Tag == TContinuation }

// PrimitiveFunc is the Go implementation of a built-in procedure. It
// returns either a result Value or, on failure, an error Value (TError) —
// primitives never panic for ordinary language-level errors, only for
// lumen-internal invariant violations (spec.md's error-values-not-Go-
// errors design).
type PrimitiveFunc func(rt *Runtime, args []Value) Value

type primitiveObj struct {
	name     string
	fn       PrimitiveFunc
	minArgs  int
	maxArgs  int // -1 for variadic
}

func (p *primitiveObj) traceRefs(refs []Value) []Value { return refs }

// NewPrimitive wraps a Go function as a callable lumen procedure.
func (rt *Runtime) NewPrimitive(name string, min, max int, fn PrimitiveFunc) Value {
	h := rt.Heap.alloc(&primitiveObj{name: name, fn: fn, minArgs: min, maxArgs: max})
	return fromHandle(TPrimitive, h)
}

func (rt *Runtime) primitive(v Value) *primitiveObj {
	return rt.Heap.get(heapHandle(v)).(*primitiveObj)
}

// IsPrimitive reports whether v is a built-in procedure.
func IsPrimitive(v Value) bool { return v.Tag == TPrimitive }

// checkArity validates argc against a primitive's declared arity, returning
// a formatted arity error condition if it doesn't fit.
func (rt *Runtime) checkArity(name string, min, max, argc int) (Value, bool) {
	if argc < min || (max >= 0 && argc > max) {
		return rt.Errorf(ErrArity, "%s: expected %s, got %d", name, arityDesc(min, max), argc), false
	}
	return Value{}, true
}

func arityDesc(min, max int) string {
	switch {
	case max < 0 && min == 0:
		return "any number of arguments"
	case max < 0:
		return "at least " + strconv.Itoa(min) + " argument(s)"
	case min == max:
		return strconv.Itoa(min) + " argument(s)"
	default:
		return "between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " arguments"
	}
}
