package lisp

// registerControlPrimitives installs call/cc, dynamic-wind, multiple
// values, eval and the condition-signaling procedures. call/cc is
// implemented as an ordinary primitive rather than a compiler-recognized
// special form, per DESIGN.md: R5RS requires it be usable as a first-class
// value (passed to map, stored in a variable, etc.), and a primitive that
// reaches into Runtime.activeRuns for the currently-executing vmRun serves
// that without adding special-form machinery. OpCallCC stays in the
// instruction set as the mechanism captureContinuation's caller needs, but
// nothing in compile.go emits it directly.
func registerControlPrimitives(rt *Runtime) {
	callCC := func(rt *Runtime, args []Value) Value {
		if len(rt.activeRuns) == 0 {
			return rt.Errorf(ErrContinuation, "call/cc used outside of a running evaluation")
		}
		run := rt.activeRuns[len(rt.activeRuns)-1]
		cont := rt.captureContinuation(run)
		return rt.Apply(args[0], []Value{cont})
	}
	prim(rt, "call/cc", 1, 1, callCC)
	prim(rt, "call-with-current-continuation", 1, 1, callCC)

	// dynamic-wind, values and call-with-values are native only for the
	// runtime hooks (PushWind/PopWind, the TValues representation) they
	// reach into; prelude.scm binds the user-facing names to these
	// %-prefixed primitives, the same wrap-a-native-target idiom delay
	// uses for %make-delay-promise.
	prim(rt, "%dynamic-wind", 3, 3, func(rt *Runtime, args []Value) Value {
		before, thunk, after := args[0], args[1], args[2]
		if v := rt.Apply(before, nil); IsError(v) {
			return v
		}
		rt.PushWind(before, after)
		result := rt.Apply(thunk, nil)
		rt.PopWind()
		if v := rt.Apply(after, nil); IsError(v) {
			return v
		}
		return result
	})

	prim(rt, "%values", 0, -1, func(rt *Runtime, args []Value) Value { return rt.MakeValues(args) })
	prim(rt, "%call-with-values", 2, 2, func(rt *Runtime, args []Value) Value {
		produced := rt.Apply(args[0], nil)
		if IsError(produced) {
			return produced
		}
		return rt.Apply(args[1], rt.valuesSlice(produced))
	})

	prim(rt, "eval", 1, 2, func(rt *Runtime, args []Value) Value {
		code, errv := rt.CompileTopLevel([]Value{args[0]})
		if IsError(errv) {
			return errv
		}
		return rt.RunCode(code, nil)
	})

	prim(rt, "gensym", 0, 1, func(rt *Runtime, args []Value) Value {
		prefix := "g"
		if len(args) == 1 {
			prefix = rt.StringGo(args[0])
		}
		return Symbol(rt.Gensym(prefix))
	})

	prim(rt, "force", 1, 1, func(rt *Runtime, args []Value) Value { return rt.Force(args[0]) })
	prim(rt, "make-promise", 1, 1, func(rt *Runtime, args []Value) Value {
		if IsPromise(args[0]) {
			return args[0]
		}
		return rt.MakeForcedPromise(args[0])
	})
	// %make-delay-promise/%make-delay-force-promise back the delay/delay-force
	// macros in prelude.scm: delay wants an eager (non-chaining) promise,
	// delay-force wants Force to keep looping through the chain it returns.
	prim(rt, "%make-delay-promise", 1, 1, func(rt *Runtime, args []Value) Value { return rt.MakePromise(args[0], false) })
	prim(rt, "%make-delay-force-promise", 1, 1, func(rt *Runtime, args []Value) Value { return rt.MakePromise(args[0], true) })

	prim(rt, "error", 1, -1, func(rt *Runtime, args []Value) Value {
		msg := rt.StringGo(args[0])
		return rt.NewError(ErrUser, msg, args[1:]...)
	})
	prim(rt, "raise", 1, 1, func(rt *Runtime, args []Value) Value {
		if IsError(args[0]) {
			return args[0]
		}
		return rt.NewError(ErrUser, rt.DisplayString(args[0]))
	})
	prim(rt, "error-object?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsError(args[0])) })
	prim(rt, "error-object-message", 1, 1, func(rt *Runtime, args []Value) Value { return rt.NewString(rt.ErrorMessage(args[0])) })
	prim(rt, "error-object-irritants", 1, 1, func(rt *Runtime, args []Value) Value { return rt.List(rt.ErrorIrritants(args[0])...) })
}
