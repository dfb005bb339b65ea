package lisp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// portObj wraps an OS file descriptor or an in-memory buffer behind a
// uniform read/write/close surface. String ports (open-input-string,
// open-output-string) are carried from original_source/src/primitives/port.rs
// per SPEC_FULL.md, primarily so the test harness can capture display/write
// output without touching the filesystem.
type portObj struct {
	name     string
	reader   *bufio.Reader
	writer   io.Writer
	closer   io.Closer
	isInput  bool
	isOutput bool
	closed   bool
	// outBuf backs open-output-string; nil for file/stdio ports.
	outBuf *bytes.Buffer
}

func (p *portObj) traceRefs(refs []Value) []Value { return refs }

func (rt *Runtime) port(v Value) *portObj {
	return rt.Heap.get(heapHandle(v)).(*portObj)
}

// newPort allocates p on the heap and returns it as a TPort Value.
func (rt *Runtime) newPort(p *portObj) Value {
	h := rt.Heap.alloc(p)
	return fromHandle(TPort, h)
}

// OpenInputFile opens name for reading.
func (rt *Runtime) OpenInputFile(name string) (Value, error) {
	f, err := os.Open(name)
	if err != nil {
		return Value{}, err
	}
	return rt.newPort(&portObj{name: name, reader: bufio.NewReader(f), closer: f, isInput: true}), nil
}

// OpenOutputFile creates or truncates name for writing.
func (rt *Runtime) OpenOutputFile(name string) (Value, error) {
	f, err := os.Create(name)
	if err != nil {
		return Value{}, err
	}
	return rt.newPort(&portObj{name: name, writer: f, closer: f, isOutput: true}), nil
}

// OpenInputString opens s as a readable in-memory port.
func (rt *Runtime) OpenInputString(s string) Value {
	return rt.newPort(&portObj{name: "string", reader: bufio.NewReader(bytes.NewReader([]byte(s))), isInput: true})
}

// OpenOutputString opens a writable in-memory port; its accumulated
// contents are retrieved with GetOutputString.
func (rt *Runtime) OpenOutputString() Value {
	buf := &bytes.Buffer{}
	return rt.newPort(&portObj{name: "string", writer: buf, outBuf: buf, isOutput: true})
}

// GetOutputString returns the accumulated contents of a string output
// port opened with OpenOutputString.
func (rt *Runtime) GetOutputString(v Value) (string, bool) {
	p := rt.port(v)
	if p.outBuf == nil {
		return "", false
	}
	return p.outBuf.String(), true
}

// WrapWriter wraps an existing io.Writer as an output port (used to bind
// current-output-port/current-error-port to the Runtime's configured
// stdout/stderr).
func (rt *Runtime) WrapWriter(name string, w io.Writer) Value {
	return rt.newPort(&portObj{name: name, writer: w, isOutput: true})
}

// WrapReader wraps an existing io.Reader as an input port.
func (rt *Runtime) WrapReader(name string, r io.Reader) Value {
	return rt.newPort(&portObj{name: name, reader: bufio.NewReader(r), isInput: true})
}

// PortWrite writes s to an output port.
func (rt *Runtime) PortWrite(v Value, s string) error {
	p := rt.port(v)
	if p.closed || !p.isOutput {
		return fmt.Errorf("port is not open for output: %s", p.name)
	}
	_, err := io.WriteString(p.writer, s)
	return err
}

// PortReadByte reads one byte from an input port, returning io.EOF at end
// of stream.
func (rt *Runtime) PortReadByte(v Value) (byte, error) {
	p := rt.port(v)
	if p.closed || !p.isInput {
		return 0, fmt.Errorf("port is not open for input: %s", p.name)
	}
	return p.reader.ReadByte()
}

// PortReadRune reads one rune from an input port.
func (rt *Runtime) PortReadRune(v Value) (rune, error) {
	p := rt.port(v)
	if p.closed || !p.isInput {
		return 0, fmt.Errorf("port is not open for input: %s", p.name)
	}
	r, _, err := p.reader.ReadRune()
	return r, err
}

// PortPeekRune peeks the next rune from an input port without consuming it.
func (rt *Runtime) PortPeekRune(v Value) (rune, error) {
	p := rt.port(v)
	if p.closed || !p.isInput {
		return 0, fmt.Errorf("port is not open for input: %s", p.name)
	}
	r, _, err := p.reader.ReadRune()
	if err == nil {
		p.reader.UnreadRune()
	}
	return r, err
}

// PortClose closes a port. Ports close via explicit close-port calls or
// process exit; there are no GC finalizers (spec.md §4.1).
func (rt *Runtime) PortClose(v Value) {
	p := rt.port(v)
	if p.closed {
		return
	}
	p.closed = true
	if p.closer != nil {
		p.closer.Close()
	}
}

// IsPort reports whether v is a port.
func IsPort(v Value) bool { return v.Tag == TPort }

// IsInputPort reports whether v is an open input port.
func (rt *Runtime) IsInputPort(v Value) bool {
	return v.Tag == TPort && rt.port(v).isInput
}

// IsOutputPort reports whether v is an open output port.
func (rt *Runtime) IsOutputPort(v Value) bool {
	return v.Tag == TPort && rt.port(v).isOutput
}
