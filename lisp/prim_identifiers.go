package lisp

import "github.com/hyperlisp/lumen/symbol"

// registerIdentifierPrimitives installs the hygiene-layer procedures that
// operate on identifiers and reified environments directly. The
// transformer constructors are not installed here: sc-macro-transformer,
// rsc-macro-transformer and er-macro-transformer are ordinary procedures
// defined in prelude.scm over macro.go's %make-*-transformer primitives,
// and syntax-rules is recognized by name in the head position of a
// define-syntax/let-syntax/letrec-syntax spec (macro.go's
// EvalTransformerSpec).
func registerIdentifierPrimitives(rt *Runtime) {
	prim(rt, "identifier?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(rt.IsIdentifier(args[0])) })

	prim(rt, "identifier=?", 4, 4, func(rt *Runtime, args []Value) Value {
		e1, ok1 := envArg(rt, args[0])
		e2, ok2 := envArg(rt, args[2])
		if !ok1 || !ok2 {
			return rt.Errorf(ErrType, "identifier=?: expected an environment")
		}
		return Bool(rt.IdentifierEqual(e1, args[1], e2, args[3]))
	})

	prim(rt, "make-syntactic-closure", 3, 3, func(rt *Runtime, args []Value) Value {
		env, ok := envArg(rt, args[0])
		if !ok {
			return rt.Errorf(ErrType, "make-syntactic-closure: expected an environment")
		}
		free, ok := rt.ListToSlice(args[1])
		if !ok {
			return rt.Errorf(ErrType, "make-syntactic-closure: free-names must be a proper list")
		}
		ids := make([]symbol.ID, len(free))
		for i, f := range free {
			if f.Tag != TSymbol {
				return rt.Errorf(ErrType, "make-syntactic-closure: free-names must be symbols")
			}
			ids[i] = GetSymbol(f)
		}
		return rt.MakeSyntacticClosure(env, ids, args[2])
	})

	prim(rt, "strip-syntactic-closures", 1, 1, func(rt *Runtime, args []Value) Value {
		return rt.StripSyntacticClosures(args[0])
	})

	// TODO: as an ordinary primitive, the-environment has no access to the
	// lexical Env live at its call site and always reifies rt.Global; every
	// current use (macro definition-environment checks) happens to want
	// the global environment anyway, but a lexically-nested call would
	// silently get the wrong answer. Fixing this needs the-environment
	// compiled specially, the way quote/lambda are, so the compiler can
	// hand it the Env in scope at the call site.
	prim(rt, "the-environment", 0, 0, func(rt *Runtime, args []Value) Value { return rt.reifyEnv(rt.Global) })
	prim(rt, "environment?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsEnv(args[0])) })
}

func envArg(rt *Runtime, v Value) (*Env, bool) {
	if !IsEnv(v) {
		return nil, false
	}
	return rt.envOf(v), true
}
