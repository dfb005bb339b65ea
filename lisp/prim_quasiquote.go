package lisp

// registerQuasiquoteHelpers installs the three runtime procedures
// compile.go's quasiquote lowering emits calls to (compile.go's
// emitQQCall1/emitQQCall2). Keeping quasiquote's runtime behavior as
// ordinary global procedures, rather than dedicated opcodes, keeps the
// compiler's quasiquote handling a pure syntax-to-syntax transformation.
func registerQuasiquoteHelpers(rt *Runtime) {
	prim(rt, "%qq-cons", 2, 2, func(rt *Runtime, args []Value) Value { return rt.Cons(args[0], args[1]) })
	prim(rt, "%qq-append", 2, 2, func(rt *Runtime, args []Value) Value {
		items, ok := rt.ListToSlice(args[0])
		if !ok {
			return rt.Errorf(ErrType, "unquote-splicing: not a proper list")
		}
		return appendImproper(rt, items, args[1])
	})
	prim(rt, "%qq-list->vector", 1, 1, func(rt *Runtime, args []Value) Value {
		items, ok := rt.ListToSlice(args[0])
		if !ok {
			return rt.Errorf(ErrType, "quasiquote: improper list in vector template")
		}
		return rt.NewVector(items)
	})
}
