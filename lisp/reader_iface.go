package lisp

import "io"

// Reader abstracts a datum-parser implementation so lisp need not import
// the reader package directly: reader imports lisp to build Values, so
// the dependency can only run one way. A Runtime with no Reader installed
// can still compile and run pre-built code; read, Boot and the REPL need
// one supplied via WithReader.
//
// Unlike elps's lisp.Reader, both methods take the *Runtime performing the
// read: elps's LVal is an ordinary Go-GC'd pointer a parser can allocate
// with no context beyond the string being parsed, but lumen's pairs,
// strings, vectors and bytevectors are heap objects addressed by Handle,
// allocated through a specific Runtime's Heap. A Reader implementation is
// stateless; it is the rt argument at each call that supplies the heap.
type Reader interface {
	// Read parses every top-level datum out of r, tagging diagnostics with
	// name, allocating heap objects on rt.
	Read(rt *Runtime, name string, r io.Reader) ([]Value, error)
	// ReadOne parses a single datum from r, returning io.EOF once no
	// further datum remains; callers translate that into the lisp-level
	// EOF() value as the read primitive does.
	ReadOne(rt *Runtime, name string, r io.Reader) (Value, error)
}
