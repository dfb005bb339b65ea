package lisp

import "sync/atomic"

// vmCallFrame is one entry in a vmRun's call stack: the CodeBlock being
// executed, the runtime Frame holding its locals, and the program counter
// within Code.Instrs.
type vmCallFrame struct {
	code  *CodeBlock
	frame *Frame
	pc    int
}

// vmRun is one trampoline instance: an operand stack shared by every call
// frame currently active within it, plus the call-frame stack itself.
// Proper tail calls keep len(calls) bounded (TAIL-CALL replaces the top
// frame rather than pushing); ordinary calls grow it, bounded by
// Runtime.maxStackDepth.
//
// generation uniquely identifies this vmRun instance for the lifetime of
// the process, letting a captured continuation's invocation find its way
// back to the correct Go call-stack frame via panic/recover (see
// continuation.go and execute below).
type vmRun struct {
	stack      []Value
	calls      []vmCallFrame
	generation uint64
}

var vmGenerationCounter uint64

func nextGeneration() uint64 { return atomic.AddUint64(&vmGenerationCounter, 1) }

func (run *vmRun) push(v Value)  { run.stack = append(run.stack, v) }
func (run *vmRun) pop() Value {
	v := run.stack[len(run.stack)-1]
	run.stack = run.stack[:len(run.stack)-1]
	return v
}
func (run *vmRun) popN(n int) []Value {
	if n == 0 {
		return nil
	}
	out := make([]Value, n)
	copy(out, run.stack[len(run.stack)-n:])
	run.stack = run.stack[:len(run.stack)-n]
	return out
}
func (run *vmRun) top() *vmCallFrame { return &run.calls[len(run.calls)-1] }

// RunCode executes a zero-or-more-argument CodeBlock to completion
// (top-level program chunks, define-syntax transformer specs, the eval
// primitive) and returns its result, or a TError value.
func (rt *Runtime) RunCode(code *CodeBlock, args []Value) Value {
	return rt.runOn(&vmRun{generation: nextGeneration()}, code, args)
}

// runOn binds code's arguments, pushes a fresh vmCallFrame onto run and
// drives it to completion. run may already carry a generation shared with
// earlier, already-completed calls (a Session's persistent run) or be
// brand new (a plain RunCode call) — either way this is the only place a
// vmCallFrame gets pushed for a top-level or Apply-driven invocation.
func (rt *Runtime) runOn(run *vmRun, code *CodeBlock, args []Value) Value {
	frame, err := rt.bindArgs(code, args, nil)
	if IsError(err) {
		return err
	}
	run.calls = append(run.calls, vmCallFrame{code: code, frame: frame, pc: 0})
	return rt.execute(run)
}

// Session is a persistent top-level execution context spanning multiple
// separately compiled chunks submitted over time — what the REPL needs so
// that a continuation captured while evaluating one entered form remains
// invocable while evaluating a later one, the same reach a single
// CompileTopLevel/RunCode call over a whole file's forms already gets for
// free (every top-level form in a file shares one CodeBlock and is driven
// by one execute call, so a call/cc captured by an earlier form is still
// within that call's dynamic extent when a later form invokes it).
// Without a Session, each REPL entry gets its own vmRun generation the way
// each Apply/RunCode call does, so a continuation captured by one entry
// can never be found by continuation.go's generation-matching recovery
// once that entry's call has returned — this is the "lifetime of the VM"
// reach spec.md §3 describes, extended across entries instead of being
// confined to a single compile/run call.
type Session struct {
	run *vmRun
}

// NewSession starts a fresh top-level session with its own vmRun
// generation, distinct from any other concurrently open Session or plain
// RunCode/Apply call.
func (rt *Runtime) NewSession() *Session {
	return &Session{run: &vmRun{generation: nextGeneration()}}
}

// RunInSession compiles-and-runs code within sess's persistent vmRun
// instead of a fresh one. Any operand-stack/call-frame state left behind
// by the previous chunk is discarded first — a normal completion already
// leaves both empty, but a chunk that errored mid-call may not, and a new
// top-level chunk always starts from a clean stack regardless. Only
// sess.run's generation carries forward across the reset, which is what
// lets a continuation captured by an earlier RunInSession call be invoked
// by a later one.
func (rt *Runtime) RunInSession(sess *Session, code *CodeBlock) Value {
	sess.run.stack = sess.run.stack[:0]
	sess.run.calls = sess.run.calls[:0]
	return rt.runOn(sess.run, code, nil)
}

// Apply invokes proc with args and runs it to completion, used by every
// Go-level caller that needs a synchronous result: primitives like apply,
// map, for-each, dynamic-wind's before/after thunks, and the macro
// expander's transformer invocations.
func (rt *Runtime) Apply(proc Value, args []Value) Value {
	switch proc.Tag {
	case TPrimitive:
		p := rt.primitive(proc)
		if errv, ok := rt.checkArity(p.name, p.minArgs, p.maxArgs, len(args)); !ok {
			return errv
		}
		return p.fn(rt, args)
	case TClosure:
		cl := rt.closure(proc)
		frame, err := rt.bindArgs(cl.code, args, cl.frame)
		if IsError(err) {
			return err
		}
		run := &vmRun{generation: nextGeneration(), calls: []vmCallFrame{{code: cl.code, frame: frame, pc: 0}}}
		return rt.execute(run)
	case TContinuation:
		panic(&continuationInvoke{cont: rt.continuation(proc), values: args})
	default:
		return rt.Errorf(ErrType, "not applicable: %s", rt.WriteString(proc))
	}
}

// bindArgs allocates a Frame for code, binding args into its leading
// slots (spilling any trailing arguments into a list bound to the rest
// parameter, if code.Variadic).
func (rt *Runtime) bindArgs(code *CodeBlock, args []Value, lexicalParent *Frame) (*Frame, Value) {
	if code.Variadic {
		if len(args) < code.NumArgs {
			return nil, rt.Errorf(ErrArity, "%s: expected at least %d arguments, got %d", code.Name, code.NumArgs, len(args))
		}
	} else if len(args) != code.NumArgs {
		return nil, rt.Errorf(ErrArity, "%s: expected %d arguments, got %d", code.Name, code.NumArgs, len(args))
	}
	frame := newFrame(code.NumSlots, lexicalParent)
	copy(frame.slots, args[:code.NumArgs])
	if code.Variadic {
		frame.slots[code.NumArgs] = rt.List(args[code.NumArgs:]...)
	}
	return frame, Value{}
}

// execute drives a vmRun's trampoline to completion, transparently
// resuming through any continuation invocations that target this run
// (see continuation.go's documented capture/invoke contract).
func (rt *Runtime) execute(run *vmRun) Value {
	rt.activeRuns = append(rt.activeRuns, run)
	defer func() { rt.activeRuns = rt.activeRuns[:len(rt.activeRuns)-1] }()
	for {
		result, resumed := rt.runOnce(run)
		if !resumed {
			return result
		}
	}
}

// vmRoots enumerates GC roots contributed by every vmRun currently
// executing anywhere on the Go call stack (nested via Apply), registered
// with the Heap in NewRuntime.
func (rt *Runtime) vmRoots() []Value {
	var roots []Value
	for _, run := range rt.activeRuns {
		roots = append(roots, run.stack...)
		for _, cf := range run.calls {
			if cf.frame != nil {
				roots = cf.frame.traceRoots(roots)
			}
			roots = append(roots, cf.code.Consts...)
		}
	}
	return roots
}

func (rt *Runtime) runOnce(run *vmRun) (result Value, resumed bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		inv, ok := r.(*continuationInvoke)
		if !ok || inv.cont.generation != run.generation {
			panic(r) // not ours: keep unwinding toward the owning vmRun
		}
		run.stack = append([]Value(nil), inv.cont.opStack...)
		run.calls = append([]vmCallFrame(nil), inv.cont.callStack...)
		if errv := rt.rewind(inv.cont.wind, rt.Apply); IsError(errv) {
			result = errv
			resumed = false
			return
		}
		run.push(rt.MakeValues(inv.values))
		resumed = true
	}()
	result = rt.loop(run)
	return result, false
}

// loop is the instruction dispatch trampoline itself.
func (rt *Runtime) loop(run *vmRun) Value {
	for {
		cf := run.top()
		if cf.pc >= len(cf.code.Instrs) {
			return rt.Errorf(ErrSyntax, "%s: fell off the end of compiled code without RETURN", cf.code.Name)
		}
		instr := cf.code.Instrs[cf.pc]
		cf.pc++

		switch instr.Op {
		case OpConst:
			run.push(cf.code.Consts[instr.A])

		case OpGetLocal:
			v := cf.frame.get(instr.A, instr.B)
			if isUninitializedSentinel(v) {
				return rt.withSpan(rt.Errorf(ErrUnbound, "uninitialized: reference to a variable before its initializer has run"), instr.Span)
			}
			run.push(v)

		case OpSetLocal:
			cf.frame.set(instr.A, instr.B, run.pop())

		case OpGetGlobal:
			sym := symbolFromRaw(instr.A)
			v, ok := rt.globalValue(sym)
			if !ok {
				return rt.withSpan(rt.Errorf(ErrUnbound, "unbound variable: %s", symbolName(sym)), instr.Span)
			}
			run.push(v)

		case OpSetGlobal:
			sym := symbolFromRaw(instr.A)
			if _, ok := rt.globalValue(sym); !ok {
				return rt.withSpan(rt.Errorf(ErrUnbound, "unbound variable: %s", symbolName(sym)), instr.Span)
			}
			rt.setGlobalValue(sym, run.pop())

		case OpDefineGlobal:
			sym := symbolFromRaw(instr.A)
			rt.Global.DefineGlobal(Symbol(sym))
			rt.setGlobalValue(sym, run.pop())

		case OpJumpIfFalse:
			if !IsTruthy(run.pop()) {
				cf.pc = instr.A
			}

		case OpJump:
			cf.pc = instr.A

		case OpMakeClosure:
			tmplRef := cf.code.Consts[instr.A]
			template := cf.code.embeddedCode[tmplRef.Data]
			run.push(rt.MakeClosure(template, cf.frame))

		case OpPop:
			run.pop()

		case OpDup:
			run.push(run.stack[len(run.stack)-1])

		case OpCall, OpTailCall:
			argc := instr.A
			args := run.popN(argc)
			proc := run.pop()
			if v, done := rt.dispatchCall(run, proc, args, instr.Op == OpTailCall, instr.Span); done {
				if IsError(v) {
					return v
				}
				run.push(v)
			}
			// else: dispatchCall pushed/replaced a call frame; loop continues there.

		case OpCallCC:
			proc := run.pop()
			cont := rt.captureContinuation(run)
			if v, done := rt.dispatchCall(run, proc, []Value{cont}, false, instr.Span); done {
				if IsError(v) {
					return v
				}
				run.push(v)
			}

		case OpReturn:
			v := run.pop()
			run.calls = run.calls[:len(run.calls)-1]
			if len(run.calls) == 0 {
				return v
			}
			run.push(v)

		default:
			return rt.Errorf(ErrSyntax, "unimplemented opcode: %s", instr.Op)
		}

		if len(run.calls) > rt.maxStackDepth {
			return rt.Errorf(ErrArity, "maximum call depth exceeded")
		}
		if rt.pollInterrupt() {
			return rt.Errorf(ErrInterrupted, "evaluation interrupted")
		}
	}
}

// dispatchCall applies proc to args from within the running trampoline.
// For a closure it pushes (or, in tail position, replaces) a vmCallFrame
// and returns done=false so loop continues executing there. For a
// primitive it runs to completion immediately and returns done=true with
// the result. Invoking a continuation panics, unwinding to its owning
// vmRun.
func (rt *Runtime) dispatchCall(run *vmRun, proc Value, args []Value, tail bool, span SourceSpan) (Value, bool) {
	switch proc.Tag {
	case TPrimitive:
		p := rt.primitive(proc)
		if errv, ok := rt.checkArity(p.name, p.minArgs, p.maxArgs, len(args)); !ok {
			return rt.withSpan(errv, span), true
		}
		return p.fn(rt, args), true

	case TClosure:
		cl := rt.closure(proc)
		frame, err := rt.bindArgs(cl.code, args, cl.frame)
		if IsError(err) {
			return rt.withSpan(err, span), true
		}
		newCF := vmCallFrame{code: cl.code, frame: frame, pc: 0}
		if tail {
			run.calls[len(run.calls)-1] = newCF
		} else {
			run.calls = append(run.calls, newCF)
		}
		return Value{}, false

	case TContinuation:
		panic(&continuationInvoke{cont: rt.continuation(proc), values: args})

	default:
		return rt.withSpan(rt.Errorf(ErrType, "not applicable: %s", rt.WriteString(proc)), span), true
	}
}
