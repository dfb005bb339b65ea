package lisp

import "math"

// registerArithPrimitives installs the numeric tower lumen actually has:
// int64 fixnums and float64 flonums, no bignums or rationals (spec.md
// Non-goals).
func registerArithPrimitives(rt *Runtime) {
	prim(rt, "+", 0, -1, func(rt *Runtime, args []Value) Value { return foldArith(rt, args, 0, addOp) })
	prim(rt, "*", 0, -1, func(rt *Runtime, args []Value) Value { return foldArith(rt, args, 1, mulOp) })
	prim(rt, "-", 1, -1, func(rt *Runtime, args []Value) Value {
		if err := checkNumbers(rt, args); IsError(err) {
			return err
		}
		if len(args) == 1 {
			return negate(args[0])
		}
		acc := args[0]
		for _, a := range args[1:] {
			acc = addOp(acc, negate(a))
		}
		return acc
	})
	prim(rt, "/", 1, -1, func(rt *Runtime, args []Value) Value {
		if err := checkNumbers(rt, args); IsError(err) {
			return err
		}
		if len(args) == 1 {
			return divOp(rt, Float(1), args[0])
		}
		acc := args[0]
		for _, a := range args[1:] {
			var errv Value
			acc, errv = divOpChecked(rt, acc, a)
			if IsError(errv) {
				return errv
			}
		}
		return acc
	})

	prim(rt, "=", 1, -1, func(rt *Runtime, args []Value) Value { return compareChain(rt, args, func(a, b float64) bool { return a == b }) })
	prim(rt, "<", 1, -1, func(rt *Runtime, args []Value) Value { return compareChain(rt, args, func(a, b float64) bool { return a < b }) })
	prim(rt, ">", 1, -1, func(rt *Runtime, args []Value) Value { return compareChain(rt, args, func(a, b float64) bool { return a > b }) })
	prim(rt, "<=", 1, -1, func(rt *Runtime, args []Value) Value { return compareChain(rt, args, func(a, b float64) bool { return a <= b }) })
	prim(rt, ">=", 1, -1, func(rt *Runtime, args []Value) Value { return compareChain(rt, args, func(a, b float64) bool { return a >= b }) })

	prim(rt, "quotient", 2, 2, func(rt *Runtime, args []Value) Value { return intDivOp(rt, args[0], args[1], "quotient") })
	prim(rt, "remainder", 2, 2, func(rt *Runtime, args []Value) Value { return intDivOp(rt, args[0], args[1], "remainder") })
	prim(rt, "modulo", 2, 2, func(rt *Runtime, args []Value) Value { return intDivOp(rt, args[0], args[1], "modulo") })

	prim(rt, "abs", 1, 1, func(rt *Runtime, args []Value) Value {
		v := args[0]
		if v.Tag == TInt {
			n := GetInt(v)
			if n < 0 {
				return Int(-n)
			}
			return v
		}
		f := GetFloat(v)
		if f < 0 {
			return Float(-f)
		}
		return v
	})
	prim(rt, "min", 1, -1, func(rt *Runtime, args []Value) Value { return minMax(args, true) })
	prim(rt, "max", 1, -1, func(rt *Runtime, args []Value) Value { return minMax(args, false) })

	prim(rt, "zero?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(ToFloat(args[0]) == 0) })
	prim(rt, "positive?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(ToFloat(args[0]) > 0) })
	prim(rt, "negative?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(ToFloat(args[0]) < 0) })
	prim(rt, "odd?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(GetInt(args[0])%2 != 0) })
	prim(rt, "even?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(GetInt(args[0])%2 == 0) })

	prim(rt, "exact->inexact", 1, 1, func(rt *Runtime, args []Value) Value { return Float(ToFloat(args[0])) })
	prim(rt, "inexact->exact", 1, 1, func(rt *Runtime, args []Value) Value {
		if args[0].Tag == TInt {
			return args[0]
		}
		return Int(int64(GetFloat(args[0])))
	})
	prim(rt, "number->string", 1, 1, func(rt *Runtime, args []Value) Value { return rt.NewString(rt.DisplayString(args[0])) })
	prim(rt, "floor", 1, 1, func(rt *Runtime, args []Value) Value { return floorLike(args[0], math.Floor) })
	prim(rt, "ceiling", 1, 1, func(rt *Runtime, args []Value) Value { return floorLike(args[0], math.Ceil) })
	prim(rt, "truncate", 1, 1, func(rt *Runtime, args []Value) Value { return floorLike(args[0], math.Trunc) })
	prim(rt, "round", 1, 1, func(rt *Runtime, args []Value) Value { return floorLike(args[0], math.Round) })
	prim(rt, "sqrt", 1, 1, func(rt *Runtime, args []Value) Value { return Float(math.Sqrt(ToFloat(args[0]))) })
	prim(rt, "expt", 2, 2, func(rt *Runtime, args []Value) Value { return Float(math.Pow(ToFloat(args[0]), ToFloat(args[1]))) })
}

func checkNumbers(rt *Runtime, args []Value) Value {
	for _, a := range args {
		if !IsNumber(a) {
			return rt.Errorf(ErrType, "not a number: %s", rt.WriteString(a))
		}
	}
	return Value{}
}

func addOp(a, b Value) Value {
	if a.Tag == TInt && b.Tag == TInt {
		return Int(GetInt(a) + GetInt(b))
	}
	return Float(ToFloat(a) + ToFloat(b))
}

func mulOp(a, b Value) Value {
	if a.Tag == TInt && b.Tag == TInt {
		return Int(GetInt(a) * GetInt(b))
	}
	return Float(ToFloat(a) * ToFloat(b))
}

func negate(a Value) Value {
	if a.Tag == TInt {
		return Int(-GetInt(a))
	}
	return Float(-GetFloat(a))
}

func divOp(rt *Runtime, a, b Value) Value {
	v, _ := divOpChecked(rt, a, b)
	return v
}

func divOpChecked(rt *Runtime, a, b Value) (Value, Value) {
	if a.Tag == TInt && b.Tag == TInt && GetInt(b) != 0 && GetInt(a)%GetInt(b) == 0 {
		return Int(GetInt(a) / GetInt(b)), Value{}
	}
	if ToFloat(b) == 0 {
		return Value{}, rt.Errorf(ErrArithmetic, "division by zero")
	}
	return Float(ToFloat(a) / ToFloat(b)), Value{}
}

func foldArith(rt *Runtime, args []Value, identity int64, op func(a, b Value) Value) Value {
	if err := checkNumbers(rt, args); IsError(err) {
		return err
	}
	acc := Int(identity)
	for _, a := range args {
		acc = op(acc, a)
	}
	return acc
}

func compareChain(rt *Runtime, args []Value, cmp func(a, b float64) bool) Value {
	if err := checkNumbers(rt, args); IsError(err) {
		return err
	}
	for i := 0; i+1 < len(args); i++ {
		if !cmp(ToFloat(args[i]), ToFloat(args[i+1])) {
			return Bool(false)
		}
	}
	return Bool(true)
}

func intDivOp(rt *Runtime, a, b Value, which string) Value {
	if a.Tag != TInt || b.Tag != TInt {
		return rt.Errorf(ErrType, "%s requires integer arguments", which)
	}
	x, y := GetInt(a), GetInt(b)
	if y == 0 {
		return rt.Errorf(ErrArithmetic, "division by zero")
	}
	switch which {
	case "quotient":
		return Int(x / y)
	case "remainder":
		return Int(x % y)
	default: // modulo
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return Int(m)
	}
}

func minMax(args []Value, wantMin bool) Value {
	best := args[0]
	inexact := best.Tag == TFloat
	for _, a := range args[1:] {
		if a.Tag == TFloat {
			inexact = true
		}
		if wantMin == (ToFloat(a) < ToFloat(best)) {
			best = a
		}
	}
	if inexact && best.Tag == TInt {
		return Float(ToFloat(best))
	}
	return best
}

func floorLike(v Value, fn func(float64) float64) Value {
	if v.Tag == TInt {
		return v
	}
	return Float(fn(GetFloat(v)))
}
