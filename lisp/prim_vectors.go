package lisp

func registerVectorPrimitives(rt *Runtime) {
	prim(rt, "vector?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsVector(args[0])) })
	prim(rt, "make-vector", 1, 2, func(rt *Runtime, args []Value) Value {
		fill := Unspecified()
		if len(args) == 2 {
			fill = args[1]
		}
		return rt.MakeVector(int(GetInt(args[0])), fill)
	})
	prim(rt, "vector", 0, -1, func(rt *Runtime, args []Value) Value { return rt.NewVector(args) })
	prim(rt, "vector-length", 1, 1, func(rt *Runtime, args []Value) Value { return Int(int64(rt.VectorLen(args[0]))) })
	prim(rt, "vector-ref", 2, 2, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.VectorLen(args[0]) {
			return rt.Errorf(ErrType, "vector-ref: index out of range")
		}
		return rt.VectorRef(args[0], i)
	})
	prim(rt, "vector-set!", 3, 3, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.VectorLen(args[0]) {
			return rt.Errorf(ErrType, "vector-set!: index out of range")
		}
		rt.VectorSet(args[0], i, args[2])
		return Unspecified()
	})
	prim(rt, "vector->list", 1, 1, func(rt *Runtime, args []Value) Value { return rt.List(rt.VectorSlice(args[0])...) })
	prim(rt, "list->vector", 1, 1, func(rt *Runtime, args []Value) Value {
		items, ok := rt.ListToSlice(args[0])
		if !ok {
			return rt.Errorf(ErrType, "list->vector: not a proper list")
		}
		return rt.NewVector(items)
	})
	prim(rt, "vector-fill!", 2, 2, func(rt *Runtime, args []Value) Value {
		n := rt.VectorLen(args[0])
		for i := 0; i < n; i++ {
			rt.VectorSet(args[0], i, args[1])
		}
		return Unspecified()
	})
	prim(rt, "vector-copy", 1, 3, func(rt *Runtime, args []Value) Value {
		items := rt.VectorSlice(args[0])
		start, end := 0, len(items)
		if len(args) >= 2 {
			start = int(GetInt(args[1]))
		}
		if len(args) == 3 {
			end = int(GetInt(args[2]))
		}
		return rt.NewVector(items[start:end])
	})
	prim(rt, "vector-map", 2, -1, func(rt *Runtime, args []Value) Value {
		vecs := make([][]Value, len(args)-1)
		minLen := -1
		for i, v := range args[1:] {
			vecs[i] = rt.VectorSlice(v)
			if minLen < 0 || len(vecs[i]) < minLen {
				minLen = len(vecs[i])
			}
		}
		out := make([]Value, minLen)
		for i := 0; i < minLen; i++ {
			callArgs := make([]Value, len(vecs))
			for j := range vecs {
				callArgs[j] = vecs[j][i]
			}
			result := rt.Apply(args[0], callArgs)
			if IsError(result) {
				return result
			}
			out[i] = result
		}
		return rt.NewVector(out)
	})
	prim(rt, "vector-for-each", 2, -1, func(rt *Runtime, args []Value) Value {
		items := rt.VectorSlice(args[1])
		for _, v := range items {
			if result := rt.Apply(args[0], []Value{v}); IsError(result) {
				return result
			}
		}
		return Unspecified()
	})
}
