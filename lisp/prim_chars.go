package lisp

import "unicode"

func registerCharPrimitives(rt *Runtime) {
	prim(rt, "char?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TChar) })
	prim(rt, "char->integer", 1, 1, func(rt *Runtime, args []Value) Value { return Int(int64(GetChar(args[0]))) })
	prim(rt, "integer->char", 1, 1, func(rt *Runtime, args []Value) Value { return Char(rune(GetInt(args[0]))) })
	prim(rt, "char-upcase", 1, 1, func(rt *Runtime, args []Value) Value { return Char(unicode.ToUpper(GetChar(args[0]))) })
	prim(rt, "char-downcase", 1, 1, func(rt *Runtime, args []Value) Value { return Char(unicode.ToLower(GetChar(args[0]))) })
	prim(rt, "char-alphabetic?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(unicode.IsLetter(GetChar(args[0]))) })
	prim(rt, "char-numeric?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(unicode.IsDigit(GetChar(args[0]))) })
	prim(rt, "char-whitespace?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(unicode.IsSpace(GetChar(args[0]))) })
	prim(rt, "char-upper-case?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(unicode.IsUpper(GetChar(args[0]))) })
	prim(rt, "char-lower-case?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(unicode.IsLower(GetChar(args[0]))) })

	type cmp struct {
		name string
		fn   func(a, b rune) bool
	}
	cmps := []cmp{
		{"char=?", func(a, b rune) bool { return a == b }},
		{"char<?", func(a, b rune) bool { return a < b }},
		{"char>?", func(a, b rune) bool { return a > b }},
		{"char<=?", func(a, b rune) bool { return a <= b }},
		{"char>=?", func(a, b rune) bool { return a >= b }},
		{"char-ci=?", func(a, b rune) bool { return unicode.ToLower(a) == unicode.ToLower(b) }},
	}
	for _, c := range cmps {
		c := c
		prim(rt, c.name, 1, -1, func(rt *Runtime, args []Value) Value {
			for i := 0; i+1 < len(args); i++ {
				if !c.fn(GetChar(args[i]), GetChar(args[i+1])) {
					return Bool(false)
				}
			}
			return Bool(true)
		})
	}
}
