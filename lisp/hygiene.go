package lisp

import "github.com/hyperlisp/lumen/symbol"

// envObj is the heap wrapper that lets a *Env be addressed by a Value
// (TEnv), so transformers can receive/pass use-env and mac-env arguments
// and the eval primitive can accept an explicit environment.
type envObj struct {
	env *Env
}

func (e *envObj) traceRefs(refs []Value) []Value { return refs }

// syntacticClosureObj is the (env, free-names, form) triple from Bawden &
// Rees's "Syntactic Closures" (spec.md §4.1): form is code produced by a
// macro transformer, env is the environment active where the transformer
// ran, and free names the identifiers within form that should resolve in
// the *use* site's environment instead of env (typically the macro's own
// formal parameters, standing for user-supplied subforms).
type syntacticClosureObj struct {
	env  *Env
	free map[symbol.ID]bool
	form Value
}

func (s *syntacticClosureObj) traceRefs(refs []Value) []Value { return append(refs, s.form) }

// MakeSyntacticClosure implements make-syntactic-closure.
func (rt *Runtime) MakeSyntacticClosure(env *Env, free []symbol.ID, form Value) Value {
	set := make(map[symbol.ID]bool, len(free))
	for _, s := range free {
		set[s] = true
	}
	h := rt.Heap.alloc(&syntacticClosureObj{env: env, free: set, form: form})
	return fromHandle(TSyntacticClosure, h)
}

func (rt *Runtime) syntacticClosure(v Value) *syntacticClosureObj {
	return rt.Heap.get(heapHandle(v)).(*syntacticClosureObj)
}

// IsIdentifier reports whether v denotes an identifier: a bare symbol, or
// a syntactic closure ultimately wrapping one.
func (rt *Runtime) IsIdentifier(v Value) bool {
	for v.Tag == TSyntacticClosure {
		v = rt.syntacticClosure(v).form
	}
	return v.Tag == TSymbol
}

// resolveIdentifier finds the (Env, symbol.ID) pair an identifier actually
// denotes when looked up starting from useEnv: bare symbols resolve in
// useEnv directly; a syntactic closure's wrapped form resolves in its own
// captured env UNLESS the underlying raw symbol is in that closure's free
// set, in which case resolution falls through to useEnv instead (the
// symbol stands for something the macro's caller supplied, not something
// the macro itself introduced).
func (rt *Runtime) resolveIdentifier(useEnv *Env, id Value) (*Env, symbol.ID) {
	if id.Tag == TSymbol {
		return useEnv, GetSymbol(id)
	}
	if id.Tag != TSyntacticClosure {
		return useEnv, symbol.ID(0)
	}
	sc := rt.syntacticClosure(id)
	innerEnv, rawSym := rt.resolveIdentifier(sc.env, sc.form)
	if sc.free[rawSym] {
		return rt.resolveIdentifier(useEnv, sc.form)
	}
	return innerEnv, rawSym
}

// IdentifierEqual implements identifier=?: two identifiers are the same
// identifier if looking each up (in its respective environment) reaches
// the same Binding, or if neither is bound and both resolve to the same
// symbol.
func (rt *Runtime) IdentifierEqual(env1 *Env, id1 Value, env2 *Env, id2 Value) bool {
	b1, _, ok1 := rt.LookupIdentifier(env1, id1)
	b2, _, ok2 := rt.LookupIdentifier(env2, id2)
	if ok1 || ok2 {
		return ok1 && ok2 && b1 == b2
	}
	_, s1 := rt.resolveIdentifier(env1, id1)
	_, s2 := rt.resolveIdentifier(env2, id2)
	return s1 == s2
}

// StripSyntacticClosures implements strip-syntactic-closures: it removes
// every syntactic-closure wrapper from v, recursively, including wrappers
// nested inside pairs and vectors, producing plain unadorned code/data.
// quote (spec.md §4.3, DESIGN.md's resolved Open Question) strips only the
// outermost wrapper of its operand instead of calling this.
func (rt *Runtime) StripSyntacticClosures(v Value) Value {
	switch v.Tag {
	case TSyntacticClosure:
		return rt.StripSyntacticClosures(rt.syntacticClosure(v).form)
	case TPair:
		return rt.Cons(rt.StripSyntacticClosures(rt.Car(v)), rt.StripSyntacticClosures(rt.Cdr(v)))
	case TVector:
		items := rt.VectorSlice(v)
		out := make([]Value, len(items))
		for i, x := range items {
			out[i] = rt.StripSyntacticClosures(x)
		}
		return rt.NewVector(out)
	default:
		return v
	}
}

// StripOutermost strips only v itself if it is a syntactic closure,
// leaving anything nested inside its form untouched. This is quote's
// behavior per DESIGN.md's resolved Open Question.
func (rt *Runtime) StripOutermost(v Value) Value {
	if v.Tag == TSyntacticClosure {
		return rt.syntacticClosure(v).form
	}
	return v
}

// renameScope memoizes renamed identifiers within a single
// er-macro-transformer invocation, so that renaming the same input
// identifier twice during one expansion yields the same fresh binding
// (spec.md's "memoized rename" requirement).
type renameScope struct {
	rt     *Runtime
	defEnv *Env
	cache  map[symbol.ID]Value
}

func newRenameScope(rt *Runtime, defEnv *Env) *renameScope {
	return &renameScope{rt: rt, defEnv: defEnv, cache: make(map[symbol.ID]Value)}
}

// rename implements the procedure passed as the second argument to a
// transformer built with er-macro-transformer. The renamed identifier is a
// syntactic closure over the macro's definition environment with an empty
// free set, so it always resolves at the definition site regardless of
// where the expansion is spliced in: this is what makes identifiers a
// macro introduces (keywords like "if", or auxiliary bound names)
// hygienic without needing gensym'd symbol names at all.
func (s *renameScope) rename(id Value) Value {
	sym := GetSymbol(id)
	if v, ok := s.cache[sym]; ok {
		return v
	}
	closure := s.rt.MakeSyntacticClosure(s.defEnv, nil, id)
	s.cache[sym] = closure
	return closure
}

// compare implements the procedure passed as the third argument to
// er-macro-transformer: identifier=? against the use-site environment
// captured when the transformer was invoked.
func (s *renameScope) compare(useEnv *Env, a, b Value) bool {
	return s.rt.IdentifierEqual(useEnv, a, useEnv, b)
}
