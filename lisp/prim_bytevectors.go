package lisp

func registerBytevectorPrimitives(rt *Runtime) {
	prim(rt, "bytevector?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsBytevector(args[0])) })
	prim(rt, "make-bytevector", 1, 2, func(rt *Runtime, args []Value) Value {
		fill := byte(0)
		if len(args) == 2 {
			fill = byte(GetInt(args[1]))
		}
		return rt.MakeBytevector(int(GetInt(args[0])), fill)
	})
	prim(rt, "bytevector", 0, -1, func(rt *Runtime, args []Value) Value {
		bs := make([]byte, len(args))
		for i, a := range args {
			bs[i] = byte(GetInt(a))
		}
		return rt.NewBytevector(bs)
	})
	prim(rt, "bytevector-length", 1, 1, func(rt *Runtime, args []Value) Value { return Int(int64(rt.BytevectorLen(args[0]))) })
	prim(rt, "bytevector-u8-ref", 2, 2, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.BytevectorLen(args[0]) {
			return rt.Errorf(ErrType, "bytevector-u8-ref: index out of range")
		}
		return Int(int64(rt.BytevectorRef(args[0], i)))
	})
	prim(rt, "bytevector-u8-set!", 3, 3, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.BytevectorLen(args[0]) {
			return rt.Errorf(ErrType, "bytevector-u8-set!: index out of range")
		}
		rt.BytevectorSet(args[0], i, byte(GetInt(args[2])))
		return Unspecified()
	})
	prim(rt, "bytevector-copy", 1, 3, func(rt *Runtime, args []Value) Value {
		bs := rt.BytevectorBytes(args[0])
		start, end := 0, len(bs)
		if len(args) >= 2 {
			start = int(GetInt(args[1]))
		}
		if len(args) == 3 {
			end = int(GetInt(args[2]))
		}
		return rt.NewBytevector(bs[start:end])
	})
	prim(rt, "bytevector-append", 0, -1, func(rt *Runtime, args []Value) Value {
		var out []byte
		for _, a := range args {
			out = append(out, rt.BytevectorBytes(a)...)
		}
		return rt.NewBytevector(out)
	})
}
