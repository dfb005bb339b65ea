package lisp

// stringObj is a mutable, byte-indexed string, per spec.md §3's data
// model ("string (mutable, byte-indexed)"). string-ref/string-set! operate
// on bytes rather than runes to match this; multi-byte UTF-8 text can
// still be built and displayed, just not mutated one codepoint at a time
// through string-set! at non-ASCII offsets. This mirrors the original
// implementation's own byte-oriented Vec<u8>-backed strings
// (original_source/src/primitives/string.rs).
type stringObj struct {
	bytes []byte
}

func (s *stringObj) traceRefs(refs []Value) []Value { return refs }

// NewString allocates a mutable string initialized from s.
func (rt *Runtime) NewString(s string) Value {
	h := rt.Heap.alloc(&stringObj{bytes: []byte(s)})
	return fromHandle(TString, h)
}

// MakeString allocates an n-byte string filled with fill.
func (rt *Runtime) MakeString(n int, fill byte) Value {
	bs := make([]byte, n)
	for i := range bs {
		bs[i] = fill
	}
	h := rt.Heap.alloc(&stringObj{bytes: bs})
	return fromHandle(TString, h)
}

func (rt *Runtime) mstring(v Value) *stringObj {
	return rt.Heap.get(heapHandle(v)).(*stringObj)
}

// StringGo returns the Go string content of v.
func (rt *Runtime) StringGo(v Value) string { return string(rt.mstring(v).bytes) }

// StringLen returns a string's length in bytes.
func (rt *Runtime) StringLen(v Value) int { return len(rt.mstring(v).bytes) }

// StringRefByte returns byte i of a string.
func (rt *Runtime) StringRefByte(v Value, i int) byte { return rt.mstring(v).bytes[i] }

// StringSetByte mutates byte i of a string in place.
func (rt *Runtime) StringSetByte(v Value, i int, b byte) { rt.mstring(v).bytes[i] = b }

// StringAppendInPlace appends more's bytes onto v's storage in place,
// implementing string-append!-style mutation used by some derived forms.
func (rt *Runtime) StringAppendInPlace(v Value, more string) {
	s := rt.mstring(v)
	s.bytes = append(s.bytes, more...)
}

// IsString reports whether v is a string.
func IsString(v Value) bool { return v.Tag == TString }
