package lisp

// valuesObj carries the payload of a call to `values` with other than
// exactly one argument: zero values, or two-or-more. A single-value
// `values` call is required by R5RS to behave exactly like its argument,
// so MakeValues collapses that case rather than allocating a TValues
// wrapper (spec.md's multiple-return-values module).
type valuesObj struct {
	items []Value
}

func (v *valuesObj) traceRefs(refs []Value) []Value { return append(refs, v.items...) }

// MakeValues packages vs as a multiple-values result. len(vs) == 1 returns
// vs[0] directly.
func (rt *Runtime) MakeValues(vs []Value) Value {
	if len(vs) == 1 {
		return vs[0]
	}
	cp := make([]Value, len(vs))
	copy(cp, vs)
	h := rt.Heap.alloc(&valuesObj{items: cp})
	return fromHandle(TValues, h)
}

// valuesSlice unpacks v into its component values: a non-TValues Value
// unpacks to a single-element slice, matching call-with-values' contract
// that a producer returning one non-tuple value is legal.
func (rt *Runtime) valuesSlice(v Value) []Value {
	if v.Tag != TValues {
		return []Value{v}
	}
	src := rt.Heap.get(heapHandle(v)).(*valuesObj).items
	cp := make([]Value, len(src))
	copy(cp, src)
	return cp
}

// IsValues reports whether v is a multiple-values tuple.
func IsValues(v Value) bool { return v.Tag == TValues }

// ValuesSlice is the exported form of valuesSlice, for host-Go callers
// (the REPL prints each of a multiple-values result on its own line).
func (rt *Runtime) ValuesSlice(v Value) []Value { return rt.valuesSlice(v) }
