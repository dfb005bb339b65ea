package lisp

// pairObj is a mutable cons cell. car/cdr are independently reassignable
// and cycles are permitted (spec.md §3 invariants); the collector traces
// both fields exhaustively.
type pairObj struct {
	car, cdr Value
}

func (p *pairObj) traceRefs(refs []Value) []Value {
	return append(refs, p.car, p.cdr)
}

// Cons allocates a new mutable pair.
func (rt *Runtime) Cons(car, cdr Value) Value {
	h := rt.Heap.alloc(&pairObj{car: car, cdr: cdr})
	return fromHandle(TPair, h)
}

func (rt *Runtime) pair(v Value) *pairObj {
	return rt.Heap.get(heapHandle(v)).(*pairObj)
}

// Car returns the car of a pair. Panics if v is not TPair; callers must
// check IsPair (or route through a primitive, which converts the panic
// into a Type error at the VM boundary).
func (rt *Runtime) Car(v Value) Value { return rt.pair(v).car }

// Cdr returns the cdr of a pair.
func (rt *Runtime) Cdr(v Value) Value { return rt.pair(v).cdr }

// SetCar mutates the car of a pair in place.
func (rt *Runtime) SetCar(v, x Value) { rt.pair(v).car = x }

// SetCdr mutates the cdr of a pair in place.
func (rt *Runtime) SetCdr(v, x Value) { rt.pair(v).cdr = x }

// IsPair reports whether v is a pair.
func IsPair(v Value) bool { return v.Tag == TPair }

// List builds a proper list from vs.
func (rt *Runtime) List(vs ...Value) Value {
	result := Nil()
	for i := len(vs) - 1; i >= 0; i-- {
		result = rt.Cons(vs[i], result)
	}
	return result
}

// ListToSlice collects a proper list into a Go slice. ok is false if the
// value is not a proper (nil-terminated, acyclic) list.
func (rt *Runtime) ListToSlice(v Value) (items []Value, ok bool) {
	slow, fast := v, v
	advanced := false
	for {
		if fast.Tag == TNil {
			return items, true
		}
		if fast.Tag != TPair {
			return items, false
		}
		items = append(items, rt.Car(fast))
		fast = rt.Cdr(fast)
		if fast.Tag == TNil {
			return items, true
		}
		if fast.Tag != TPair {
			return items, false
		}
		items = append(items, rt.Car(fast))
		fast = rt.Cdr(fast)

		if advanced {
			slow = rt.Cdr(slow)
			if Equals(slow, fast) {
				return items, false // cyclic
			}
		}
		advanced = !advanced
	}
}

// IsList reports whether v is a proper, acyclic list, per the resolved
// Open Question in DESIGN.md (cycle detection required).
func (rt *Runtime) IsList(v Value) bool {
	if v.Tag == TNil {
		return true
	}
	if v.Tag != TPair {
		return false
	}
	_, ok := rt.ListToSlice(v)
	return ok
}

// ListLength returns the length of a proper list, or -1 if v is not one.
func (rt *Runtime) ListLength(v Value) int {
	items, ok := rt.ListToSlice(v)
	if !ok {
		return -1
	}
	return len(items)
}
