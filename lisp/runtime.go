package lisp

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/hyperlisp/lumen/symbol"
)

// Config configures a Runtime at construction time, mirroring elps's own
// lisp.Config function type (lisp/config.go).
type Config func(rt *Runtime)

// WithStderr redirects internal diagnostics away from os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(rt *Runtime) { rt.stderrWriter = w }
}

// WithStdout redirects the current-output-port destination away from
// os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(rt *Runtime) { rt.stdoutWriter = w }
}

// WithStdin redirects the current-input-port source away from os.Stdin.
func WithStdin(r io.Reader) Config {
	return func(rt *Runtime) { rt.stdinReader = r }
}

// WithMaxStackDepth bounds the depth of *non-tail* calls (proper tail
// calls stay O(1) regardless of this setting, per spec.md §4.4). Mirrors
// elps's WithMaximumEffectiveStackHeight.
func WithMaxStackDepth(n int) Config {
	return func(rt *Runtime) { rt.maxStackDepth = n }
}

// WithLogLevel sets the internal diagnostic verbosity (0 = off). Mirrors
// the LUMEN_LOG environment variable read by cmd/lumen.
func WithLogLevel(n int) Config {
	return func(rt *Runtime) { rt.logLevel = n }
}

// WithGCThreshold overrides the number of allocations between automatic
// collections.
func WithGCThreshold(n int) Config {
	return func(rt *Runtime) { rt.gcThreshold = n }
}

// WithReader installs the datum parser used by read, Boot and the REPL.
// There is no default Reader for a Runtime; cmd/lumen and lumentest wire
// one in from the reader package.
func WithReader(r Reader) Config {
	return func(rt *Runtime) { rt.reader = r }
}

// Runtime owns every piece of mutable interpreter state: the heap, the
// global environment, the VM, and the ambient configuration (stdio,
// logging, stack limits). One Runtime is a fully isolated interpreter
// instance; lumentest constructs a fresh one per test the way elpstest
// constructs a fresh *lisp.LEnv per test.
type Runtime struct {
	Heap    *Heap
	Symbols symbol.Table
	Global  *Env
	globals *globalTable

	stdin, stdout, stderr Value // Port values, set up in NewRuntime

	// pending io.Writer/io.Reader overrides supplied via Config, applied
	// during NewRuntime before the corresponding port Values are created.
	stdinReader  io.Reader
	stdoutWriter io.Writer
	stderrWriter io.Writer

	logLevel      int
	maxStackDepth int
	gcThreshold   int

	gensymCounter uint64
	currentWind   *windPoint

	expander   *expander
	activeRuns []*vmRun
	reader     Reader

	// callDepth is not updated anywhere; maxStackDepth is enforced by the
	// VM against the length of each vmRun's call stack.
	callDepth int

	// interrupted is polled at back-edges and call instructions
	// (spec.md §5).
	interrupted int32
}

// NewRuntime constructs a Runtime with the standard prelude NOT yet
// loaded; call Boot to load it. Most callers want NewBootedRuntime.
func NewRuntime(cfgs ...Config) *Runtime {
	rt := &Runtime{
		Symbols:       symbol.Default,
		maxStackDepth: 100000,
		gcThreshold:   4096,
	}
	for _, cfg := range cfgs {
		cfg(rt)
	}
	rt.Heap = NewHeap(rt.gcThreshold)

	stdout := rt.stdoutWriter
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := rt.stderrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	stdin := rt.stdinReader
	if stdin == nil {
		stdin = os.Stdin
	}
	rt.stdout = rt.WrapWriter("stdout", stdout)
	rt.stderr = rt.WrapWriter("stderr", stderr)
	rt.stdin = rt.WrapReader("stdin", stdin)

	rt.Global = newGlobalEnv(rt)
	rt.currentWind = &windPoint{depth: 0}
	rt.expander = newExpander(rt)
	rt.Heap.AddRootProvider(rt.gcRoots)
	rt.Heap.AddRootProvider(rt.vmRoots)
	if rt.logLevel >= 2 {
		if w, ok := rt.tryPort(rt.stderr); ok {
			rt.Heap.SetLogger(w)
		}
	}
	registerPrimitives(rt)
	return rt
}

// tryPort exposes the underlying io.Writer of a port Value for internal
// diagnostic wiring; it is not part of the language-level port API.
func (rt *Runtime) tryPort(v Value) (io.Writer, bool) {
	if v.Tag != TPort {
		return nil, false
	}
	p := rt.port(v)
	if p.writer == nil {
		return nil, false
	}
	return p.writer, true
}

// NewBootedRuntime constructs a Runtime and loads the prelude.
func NewBootedRuntime(cfgs ...Config) (*Runtime, error) {
	rt := NewRuntime(cfgs...)
	if err := rt.Boot(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Logf writes a diagnostic line to the configured stderr if level is at or
// below the configured LogLevel.
func (rt *Runtime) Logf(level int, format string, args ...interface{}) {
	if level > rt.logLevel {
		return
	}
	fmt.Fprintf(rt.mustWriter(rt.stderr), format+"\n", args...)
}

func (rt *Runtime) mustWriter(v Value) io.Writer {
	w, ok := rt.tryPort(v)
	if !ok {
		return os.Stderr
	}
	return w
}

// Gensym returns a freshly interned, guaranteed-unique symbol used by
// the gensym primitive.
func (rt *Runtime) Gensym(prefix string) symbol.ID {
	n := atomic.AddUint64(&rt.gensymCounter, 1)
	return rt.Symbols.Intern(fmt.Sprintf("%s%%%d", prefix, n))
}

// Interrupt requests that the current top-level evaluation unwind with an
// Interrupted error at the next poll point (spec.md §5).
func (rt *Runtime) Interrupt() { atomic.StoreInt32(&rt.interrupted, 1) }

func (rt *Runtime) pollInterrupt() bool {
	return atomic.CompareAndSwapInt32(&rt.interrupted, 1, 0)
}

// gcRoots enumerates GC roots owned directly by the Runtime: the global
// table's bindings and the three standard ports. The VM registers its own
// stack/frame root provider separately (see vm.go).
func (rt *Runtime) gcRoots() []Value {
	roots := []Value{rt.stdin, rt.stdout, rt.stderr}
	roots = append(roots, rt.Global.valueRoots()...)
	return roots
}

// CurrentOutputPort returns the Runtime's configured stdout port.
func (rt *Runtime) CurrentOutputPort() Value { return rt.stdout }

// CurrentErrorPort returns the Runtime's configured stderr port.
func (rt *Runtime) CurrentErrorPort() Value { return rt.stderr }

// CurrentInputPort returns the Runtime's configured stdin port.
func (rt *Runtime) CurrentInputPort() Value { return rt.stdin }
