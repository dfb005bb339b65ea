// Package lisp is the core of lumen: the tagged value representation, the
// tracing heap, the lexical/hygiene environment model, the syntactic-closure
// macro expander with its derived syntax-rules layer, the bytecode compiler,
// the stack virtual machine (proper tail calls, call/cc, dynamic-wind,
// multiple values), and the built-in procedures the VM calls into.
//
// The package intentionally stays flat, mirroring the teacher codebase
// (bmatsuo-at-luthersystems-elps's lisp package), rather than splitting the
// tightly-coupled expander/compiler/VM across packages that would otherwise
// need to import each other in a cycle to bootstrap macro-time evaluation.
package lisp

import (
	"math"

	"github.com/hyperlisp/lumen/symbol"
)

// Tag identifies the shape of a Value.
type Tag uint8

// Possible Tag values. Immediates carry their payload directly in
// Value.Data; everything from TString onward is heap-allocated and Data holds
// a Handle into the owning Runtime's Heap.
const (
	TUnspecified Tag = iota
	TNil                // the empty list
	TBool
	TChar
	TInt
	TFloat
	TSymbol
	TEOF

	// heap-allocated variants (spec.md §3)
	TString // mutable, byte-indexed
	TPair
	TVector
	TBytevector
	TPort
	TClosure
	TPrimitive
	TContinuation
	TPromise
	TSyntacticClosure
	TFrame // activation frame, rarely user-visible
	TCode  // code block, rarely user-visible (result of compiling)
	TEnv   // reified lexical/hygiene environment
	TValues
	TError
	TTransformer // macro transformer produced by one of the *-macro-transformer constructors
)

var tagNames = [...]string{
	TUnspecified:      "unspecified",
	TNil:              "nil",
	TBool:             "boolean",
	TChar:             "char",
	TInt:              "int",
	TFloat:            "float",
	TSymbol:           "symbol",
	TEOF:              "eof",
	TString:           "string",
	TPair:             "pair",
	TVector:           "vector",
	TBytevector:       "bytevector",
	TPort:             "port",
	TClosure:          "procedure",
	TPrimitive:        "procedure",
	TContinuation:     "continuation",
	TPromise:          "promise",
	TSyntacticClosure: "syntactic-closure",
	TFrame:            "frame",
	TCode:             "code",
	TEnv:              "environment",
	TValues:           "values",
	TError:            "error",
	TTransformer:      "macro-transformer",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) && tagNames[t] != "" {
		return tagNames[t]
	}
	return "invalid"
}

// Handle is an index into a Heap's cell arena.
type Handle uint32

// Value is a lumen runtime value. Immediates are self-contained; everything
// heap-allocated stores a Handle in Data and must be dereferenced through a
// *Runtime's Heap.
//
// Value is a plain, comparable Go value (like elps's v2 LVal) so it can be
// stored directly in Go slices and maps without additional indirection or
// boxing, and copied freely; mutation of "the same object" happens through
// heap objects reached via Handle, never by mutating a Value in place.
type Value struct {
	Tag  Tag
	Data uint64
}

// Unspecified is returned by operations whose result R5RS leaves undefined
// (e.g. set!, define, most side-effecting operators).
func Unspecified() Value { return Value{Tag: TUnspecified} }

// Nil is the empty list.
func Nil() Value { return Value{Tag: TNil} }

// EOF is the end-of-file object returned by read and friends.
func EOF() Value { return Value{Tag: TEOF} }

// Bool wraps a Go bool.
func Bool(b bool) Value {
	if b {
		return Value{Tag: TBool, Data: 1}
	}
	return Value{Tag: TBool, Data: 0}
}

// IsTruthy implements R5RS truthiness: everything except #f is true,
// including '() and 0, matching spec.md's boolean model.
func IsTruthy(v Value) bool {
	return !(v.Tag == TBool && v.Data == 0)
}

// Char wraps a rune.
func Char(r rune) Value { return Value{Tag: TChar, Data: uint64(uint32(r))} }

// GetChar extracts the rune from a TChar value.
func GetChar(v Value) rune { return rune(uint32(v.Data)) }

// Int wraps a fixnum. lumen's integers are Go int64s; there is no bignum
// tower (spec.md Non-goals).
func Int(x int64) Value { return Value{Tag: TInt, Data: uint64(x)} }

// GetInt extracts the int64 from a TInt value.
func GetInt(v Value) int64 { return int64(v.Data) }

// Float wraps an inexact real.
func Float(x float64) Value { return Value{Tag: TFloat, Data: math.Float64bits(x)} }

// GetFloat extracts the float64 from a TFloat value.
func GetFloat(v Value) float64 { return math.Float64frombits(v.Data) }

// ToFloat coerces any numeric Value to float64.
func ToFloat(v Value) float64 {
	if v.Tag == TInt {
		return float64(GetInt(v))
	}
	return GetFloat(v)
}

// IsNumber reports whether v is TInt or TFloat.
func IsNumber(v Value) bool { return v.Tag == TInt || v.Tag == TFloat }

// Symbol wraps an interned identifier.
func Symbol(id symbol.ID) Value { return Value{Tag: TSymbol, Data: uint64(id)} }

// GetSymbol extracts the symbol.ID from a TSymbol value.
func GetSymbol(v Value) symbol.ID { return symbol.ID(v.Data) }

// IsSymbol reports whether v is a plain (non-syntactic-closure) symbol.
func IsSymbol(v Value) bool { return v.Tag == TSymbol }

// heapHandle returns the Handle stored in v.Data. Callers must already know
// v.Tag is one of the heap-allocated tags.
func heapHandle(v Value) Handle { return Handle(v.Data) }

func fromHandle(tag Tag, h Handle) Value { return Value{Tag: tag, Data: uint64(h)} }

// Equals implements eq?: identity for heap objects (same Handle), value
// equality for immediates.
func Equals(a, b Value) bool {
	return a.Tag == b.Tag && a.Data == b.Data
}
