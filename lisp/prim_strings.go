package lisp

import (
	"strconv"
	"strings"
)

func parseInt64(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat64(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func registerStringPrimitives(rt *Runtime) {
	prim(rt, "string?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsString(args[0])) })
	prim(rt, "make-string", 1, 2, func(rt *Runtime, args []Value) Value {
		fill := byte(' ')
		if len(args) == 2 {
			fill = byte(GetChar(args[1]))
		}
		return rt.MakeString(int(GetInt(args[0])), fill)
	})
	prim(rt, "string", 0, -1, func(rt *Runtime, args []Value) Value {
		var b strings.Builder
		for _, c := range args {
			b.WriteRune(GetChar(c))
		}
		return rt.NewString(b.String())
	})
	prim(rt, "string-length", 1, 1, func(rt *Runtime, args []Value) Value { return Int(int64(rt.StringLen(args[0]))) })
	prim(rt, "string-ref", 2, 2, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.StringLen(args[0]) {
			return rt.Errorf(ErrType, "string-ref: index out of range")
		}
		return Char(rune(rt.StringRefByte(args[0], i)))
	})
	prim(rt, "string-set!", 3, 3, func(rt *Runtime, args []Value) Value {
		i := int(GetInt(args[1]))
		if i < 0 || i >= rt.StringLen(args[0]) {
			return rt.Errorf(ErrType, "string-set!: index out of range")
		}
		rt.StringSetByte(args[0], i, byte(GetChar(args[2])))
		return Unspecified()
	})
	prim(rt, "string-append", 0, -1, func(rt *Runtime, args []Value) Value {
		var b strings.Builder
		for _, s := range args {
			b.WriteString(rt.StringGo(s))
		}
		return rt.NewString(b.String())
	})
	prim(rt, "substring", 2, 3, func(rt *Runtime, args []Value) Value {
		s := rt.StringGo(args[0])
		start := int(GetInt(args[1]))
		end := len(s)
		if len(args) == 3 {
			end = int(GetInt(args[2]))
		}
		if start < 0 || end > len(s) || start > end {
			return rt.Errorf(ErrType, "substring: index out of range")
		}
		return rt.NewString(s[start:end])
	})
	prim(rt, "string-copy", 1, 3, func(rt *Runtime, args []Value) Value {
		s := rt.StringGo(args[0])
		start, end := 0, len(s)
		if len(args) >= 2 {
			start = int(GetInt(args[1]))
		}
		if len(args) == 3 {
			end = int(GetInt(args[2]))
		}
		return rt.NewString(s[start:end])
	})
	prim(rt, "string->list", 1, 1, func(rt *Runtime, args []Value) Value {
		s := rt.StringGo(args[0])
		out := make([]Value, 0, len(s))
		for _, r := range s {
			out = append(out, Char(r))
		}
		return rt.List(out...)
	})
	prim(rt, "list->string", 1, 1, func(rt *Runtime, args []Value) Value {
		items, ok := rt.ListToSlice(args[0])
		if !ok {
			return rt.Errorf(ErrType, "list->string: not a proper list")
		}
		var b strings.Builder
		for _, c := range items {
			b.WriteRune(GetChar(c))
		}
		return rt.NewString(b.String())
	})
	prim(rt, "string->symbol", 1, 1, func(rt *Runtime, args []Value) Value {
		return Symbol(rt.Symbols.Intern(rt.StringGo(args[0])))
	})
	prim(rt, "symbol->string", 1, 1, func(rt *Runtime, args []Value) Value {
		return rt.NewString(symbolName(GetSymbol(args[0])))
	})
	prim(rt, "string->number", 1, 1, func(rt *Runtime, args []Value) Value { return parseNumberLiteral(rt.StringGo(args[0])) })
	prim(rt, "string-upcase", 1, 1, func(rt *Runtime, args []Value) Value { return rt.NewString(strings.ToUpper(rt.StringGo(args[0]))) })
	prim(rt, "string-downcase", 1, 1, func(rt *Runtime, args []Value) Value { return rt.NewString(strings.ToLower(rt.StringGo(args[0]))) })

	registerStringComparisons(rt)
}

func registerStringComparisons(rt *Runtime) {
	type cmp struct {
		name string
		fn   func(a, b string) bool
	}
	cmps := []cmp{
		{"string=?", func(a, b string) bool { return a == b }},
		{"string<?", func(a, b string) bool { return a < b }},
		{"string>?", func(a, b string) bool { return a > b }},
		{"string<=?", func(a, b string) bool { return a <= b }},
		{"string>=?", func(a, b string) bool { return a >= b }},
		{"string-ci=?", func(a, b string) bool { return strings.EqualFold(a, b) }},
	}
	for _, c := range cmps {
		c := c
		prim(rt, c.name, 1, -1, func(rt *Runtime, args []Value) Value {
			for i := 0; i+1 < len(args); i++ {
				if !c.fn(rt.StringGo(args[i]), rt.StringGo(args[i+1])) {
					return Bool(false)
				}
			}
			return Bool(true)
		})
	}
}

func parseNumberLiteral(s string) Value {
	if s == "" {
		return Bool(false)
	}
	if n, ok := parseInt64(s); ok {
		return Int(n)
	}
	if f, ok := parseFloat64(s); ok {
		return Float(f)
	}
	return Bool(false)
}
