package lisp

func registerPredicatePrimitives(rt *Runtime) {
	prim(rt, "eq?", 2, 2, func(rt *Runtime, args []Value) Value { return Bool(Equals(args[0], args[1])) })
	prim(rt, "eqv?", 2, 2, func(rt *Runtime, args []Value) Value { return Bool(Eqv(args[0], args[1])) })
	prim(rt, "equal?", 2, 2, func(rt *Runtime, args []Value) Value { return Bool(rt.EqualValues(args[0], args[1])) })
	prim(rt, "not", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(!IsTruthy(args[0])) })

	prim(rt, "boolean?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TBool) })
	prim(rt, "symbol?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsSymbol(args[0])) })
	prim(rt, "number?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsNumber(args[0])) })
	prim(rt, "integer?", 1, 1, func(rt *Runtime, args []Value) Value {
		return Bool(args[0].Tag == TInt || (args[0].Tag == TFloat && GetFloat(args[0]) == float64(int64(GetFloat(args[0])))))
	})
	prim(rt, "real?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsNumber(args[0])) })
	prim(rt, "exact?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TInt) })
	prim(rt, "inexact?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TFloat) })
	prim(rt, "procedure?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsProcedure(args[0])) })
	// string?, vector?, bytevector?, char?, pair?, null? and port? are
	// installed by their respective family files (prim_strings.go,
	// prim_vectors.go, prim_bytevectors.go, prim_chars.go, prim_pairs.go,
	// prim_io.go).
	prim(rt, "promise?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsPromise(args[0])) })
	prim(rt, "continuation?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsContinuation(args[0])) })
	prim(rt, "values?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsValues(args[0])) })
}
