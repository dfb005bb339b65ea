package lisp

func registerPairPrimitives(rt *Runtime) {
	prim(rt, "cons", 2, 2, func(rt *Runtime, args []Value) Value { return rt.Cons(args[0], args[1]) })
	prim(rt, "car", 1, 1, func(rt *Runtime, args []Value) Value { return safePairAccess(rt, args[0], "car", rt.Car) })
	prim(rt, "cdr", 1, 1, func(rt *Runtime, args []Value) Value { return safePairAccess(rt, args[0], "cdr", rt.Cdr) })
	prim(rt, "set-car!", 2, 2, func(rt *Runtime, args []Value) Value {
		if !IsPair(args[0]) {
			return rt.Errorf(ErrType, "set-car!: not a pair")
		}
		rt.SetCar(args[0], args[1])
		return Unspecified()
	})
	prim(rt, "set-cdr!", 2, 2, func(rt *Runtime, args []Value) Value {
		if !IsPair(args[0]) {
			return rt.Errorf(ErrType, "set-cdr!: not a pair")
		}
		rt.SetCdr(args[0], args[1])
		return Unspecified()
	})
	for _, combo := range []string{"aa", "ad", "da", "dd", "aaa", "aad", "ada", "add", "daa", "dad", "dda", "ddd"} {
		combo := combo
		prim(rt, "c"+combo+"r", 1, 1, func(rt *Runtime, args []Value) Value { return cxr(rt, args[0], combo) })
	}
	prim(rt, "list", 0, -1, func(rt *Runtime, args []Value) Value { return rt.List(args...) })
	prim(rt, "pair?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsPair(args[0])) })
	prim(rt, "null?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TNil) })
	prim(rt, "list?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(rt.IsList(args[0])) })
	prim(rt, "length", 1, 1, func(rt *Runtime, args []Value) Value {
		n := rt.ListLength(args[0])
		if n < 0 {
			return rt.Errorf(ErrType, "length: not a proper list")
		}
		return Int(int64(n))
	})
	prim(rt, "append", 0, -1, func(rt *Runtime, args []Value) Value { return appendLists(rt, args) })
	prim(rt, "reverse", 1, 1, func(rt *Runtime, args []Value) Value {
		items, ok := rt.ListToSlice(args[0])
		if !ok {
			return rt.Errorf(ErrType, "reverse: not a proper list")
		}
		out := make([]Value, len(items))
		for i, v := range items {
			out[len(items)-1-i] = v
		}
		return rt.List(out...)
	})
	prim(rt, "list-tail", 2, 2, func(rt *Runtime, args []Value) Value {
		cur := args[0]
		for n := GetInt(args[1]); n > 0; n-- {
			if !IsPair(cur) {
				return rt.Errorf(ErrType, "list-tail: index out of range")
			}
			cur = rt.Cdr(cur)
		}
		return cur
	})
	prim(rt, "list-ref", 2, 2, func(rt *Runtime, args []Value) Value {
		cur := args[0]
		for n := GetInt(args[1]); n > 0; n-- {
			if !IsPair(cur) {
				return rt.Errorf(ErrType, "list-ref: index out of range")
			}
			cur = rt.Cdr(cur)
		}
		if !IsPair(cur) {
			return rt.Errorf(ErrType, "list-ref: index out of range")
		}
		return rt.Car(cur)
	})
	prim(rt, "list-copy", 1, 1, func(rt *Runtime, args []Value) Value {
		items, _ := rt.ListToSlice(args[0])
		return rt.List(items...)
	})

	prim(rt, "memq", 2, 2, func(rt *Runtime, args []Value) Value { return member(rt, args[0], args[1], Eqv) })
	prim(rt, "memv", 2, 2, func(rt *Runtime, args []Value) Value { return member(rt, args[0], args[1], Eqv) })
	prim(rt, "member", 2, 2, func(rt *Runtime, args []Value) Value { return member(rt, args[0], args[1], rt.EqualValues) })
	prim(rt, "assq", 2, 2, func(rt *Runtime, args []Value) Value { return assoc(rt, args[0], args[1], Eqv) })
	prim(rt, "assv", 2, 2, func(rt *Runtime, args []Value) Value { return assoc(rt, args[0], args[1], Eqv) })
	prim(rt, "assoc", 2, 2, func(rt *Runtime, args []Value) Value { return assoc(rt, args[0], args[1], rt.EqualValues) })

	prim(rt, "map", 2, -1, func(rt *Runtime, args []Value) Value { return mapLists(rt, args[0], args[1:]) })
	prim(rt, "for-each", 2, -1, func(rt *Runtime, args []Value) Value {
		result := mapLists(rt, args[0], args[1:])
		if IsError(result) {
			return result
		}
		return Unspecified()
	})
	prim(rt, "apply", 2, -1, func(rt *Runtime, args []Value) Value {
		last := args[len(args)-1]
		tail, ok := rt.ListToSlice(last)
		if !ok {
			return rt.Errorf(ErrType, "apply: last argument must be a proper list")
		}
		flat := append(append([]Value{}, args[1:len(args)-1]...), tail...)
		return rt.Apply(args[0], flat)
	})
}

func safePairAccess(rt *Runtime, v Value, name string, get func(Value) Value) Value {
	if !IsPair(v) {
		return rt.Errorf(ErrType, "%s: not a pair: %s", name, rt.WriteString(v))
	}
	return get(v)
}

func cxr(rt *Runtime, v Value, combo string) Value {
	for i := len(combo) - 1; i >= 0; i-- {
		if !IsPair(v) {
			return rt.Errorf(ErrType, "c%sr: not a pair", combo)
		}
		if combo[i] == 'a' {
			v = rt.Car(v)
		} else {
			v = rt.Cdr(v)
		}
	}
	return v
}

func appendLists(rt *Runtime, lists []Value) Value {
	if len(lists) == 0 {
		return Nil()
	}
	var all []Value
	for _, l := range lists[:len(lists)-1] {
		items, ok := rt.ListToSlice(l)
		if !ok {
			return rt.Errorf(ErrType, "append: not a proper list")
		}
		all = append(all, items...)
	}
	return appendImproper(rt, all, lists[len(lists)-1])
}

func member(rt *Runtime, x, list Value, eq func(a, b Value) bool) Value {
	for cur := list; IsPair(cur); cur = rt.Cdr(cur) {
		if eq(rt.Car(cur), x) {
			return cur
		}
	}
	return Bool(false)
}

func assoc(rt *Runtime, x, alist Value, eq func(a, b Value) bool) Value {
	for cur := alist; IsPair(cur); cur = rt.Cdr(cur) {
		entry := rt.Car(cur)
		if IsPair(entry) && eq(rt.Car(entry), x) {
			return entry
		}
	}
	return Bool(false)
}

func mapLists(rt *Runtime, proc Value, lists []Value) Value {
	slices := make([][]Value, len(lists))
	minLen := -1
	for i, l := range lists {
		items, ok := rt.ListToSlice(l)
		if !ok {
			return rt.Errorf(ErrType, "map/for-each: not a proper list")
		}
		slices[i] = items
		if minLen < 0 || len(items) < minLen {
			minLen = len(items)
		}
	}
	out := make([]Value, 0, minLen)
	for i := 0; i < minLen; i++ {
		callArgs := make([]Value, len(slices))
		for j := range slices {
			callArgs[j] = slices[j][i]
		}
		v := rt.Apply(proc, callArgs)
		if IsError(v) {
			return v
		}
		out = append(out, v)
	}
	return rt.List(out...)
}
