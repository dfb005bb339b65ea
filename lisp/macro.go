package lisp


// transformerKind distinguishes the three procedural transformer
// constructors from spec.md §4.1 (syntax-rules builds a kindER
// transformer): they differ only in how much of the syntactic-closure
// machinery the macro writer wants to do by hand versus have done
// automatically.
type transformerKind uint8

const (
	kindSC transformerKind = iota // sc-macro-transformer: (proc form env)
	kindRSC                       // rsc-macro-transformer: (proc form mac-env), form not stripped
	kindER                        // er-macro-transformer: (proc form rename compare)
)

// transformerObj is the runtime representation of a macro transformer:
// the underlying lumen procedure plus the environment active where
// define-syntax (or let-syntax/letrec-syntax) evaluated the
// transformer-constructing expression.
type transformerObj struct {
	kind   transformerKind
	proc   Value
	defEnv *Env
}

func (t *transformerObj) traceRefs(refs []Value) []Value { return append(refs, t.proc) }

func (rt *Runtime) makeTransformer(kind transformerKind, proc Value, defEnv *Env) Value {
	h := rt.Heap.alloc(&transformerObj{kind: kind, proc: proc, defEnv: defEnv})
	return fromHandle(TTransformer, h)
}

// registerMacroPrimitives installs the %-prefixed native targets that back
// sc-macro-transformer/rsc-macro-transformer/er-macro-transformer's
// prelude.scm definitions (see prelude.scm): wrapping a transformer
// procedure into a TTransformer value needs Heap access no ordinary
// primitive-free Scheme code has, but deciding which of the three
// constructors was used, and evaluating the procedure expression itself,
// needs no special compiler support at all — EvalTransformerSpec compiles
// and runs a (sc-macro-transformer ...)-shaped spec as an ordinary
// expression and just checks the result is a transformer.
//
// mac-env is always rt.Global: per DESIGN.md's resolved Open Question,
// only the global environment is guaranteed to hold live runtime values
// at macro-definition (expansion) time, regardless of the lexical site
// define-syntax/let-syntax/letrec-syntax happens to appear at.
func registerMacroPrimitives(rt *Runtime) {
	ctor := func(kind transformerKind) PrimitiveFunc {
		return func(rt *Runtime, args []Value) Value {
			return rt.makeTransformer(kind, args[0], rt.Global)
		}
	}
	prim(rt, "%make-sc-transformer", 1, 1, ctor(kindSC))
	prim(rt, "%make-rsc-transformer", 1, 1, ctor(kindRSC))
	prim(rt, "%make-er-transformer", 1, 1, ctor(kindER))
}

func (rt *Runtime) transformer(v Value) *transformerObj {
	return rt.Heap.get(heapHandle(v)).(*transformerObj)
}

// IsTransformer reports whether v is a macro transformer value.
func IsTransformer(v Value) bool { return v.Tag == TTransformer }

// expander owns the per-Runtime state the macro system needs beyond what
// individual Env/transformer values carry: currently just a place to hang
// future cross-expansion caches (syntax-rules pattern compilation results
// are cached on the transformer's proc closure itself, see syntaxrules.go).
type expander struct {
	rt *Runtime
}

func newExpander(rt *Runtime) *expander { return &expander{rt: rt} }

// Expand fully macro-expands form in useEnv, repeatedly invoking
// transformers until the head no longer names a macro keyword. This is
// the entry point compile.go calls before deciding how to compile a
// combination.
func (rt *Runtime) Expand(useEnv *Env, form Value) (Value, Value) {
	for {
		head, ok := formHead(rt, form)
		if !ok {
			return form, Value{}
		}
		b, _, found := rt.LookupIdentifier(useEnv, head)
		if !found || b.Kind != BindMacro {
			return form, Value{}
		}
		expanded, err := rt.expandOnce(useEnv, b, form)
		if IsError(err) {
			return Value{}, err
		}
		form = expanded
	}
}

func formHead(rt *Runtime, form Value) (Value, bool) {
	if !IsPair(form) {
		return Value{}, false
	}
	head := rt.Car(form)
	return head, rt.IsIdentifier(head)
}

func (rt *Runtime) expandOnce(useEnv *Env, b *Binding, form Value) (Value, Value) {
	xf := rt.transformer(b.Transformer)
	switch xf.kind {
	case kindSC:
		// sc-macro-transformer: f(expr, use-env), result wrapped in a
		// syntactic closure over the macro's own definition environment so
		// identifiers the transformer left untouched default to mac-env.
		useEnvV := rt.reifyEnv(useEnv)
		result := rt.Apply(xf.proc, []Value{form, useEnvV})
		if IsError(result) {
			return Value{}, result
		}
		return rt.MakeSyntacticClosure(xf.defEnv, nil, result), Value{}
	case kindRSC:
		// rsc-macro-transformer: f(expr, mac-env), no wrapping — the dual
		// of sc-macro-transformer.
		defEnvV := rt.reifyEnv(xf.defEnv)
		result := rt.Apply(xf.proc, []Value{form, defEnvV})
		if IsError(result) {
			return Value{}, result
		}
		return result, Value{}
	case kindER:
		scope := newRenameScope(rt, xf.defEnv)
		renameProc := rt.NewPrimitive("rename", 1, 1, func(rt *Runtime, args []Value) Value {
			return scope.rename(args[0])
		})
		compareProc := rt.NewPrimitive("compare", 2, 2, func(rt *Runtime, args []Value) Value {
			return Bool(scope.compare(useEnv, args[0], args[1]))
		})
		result := rt.Apply(xf.proc, []Value{form, renameProc, compareProc})
		if IsError(result) {
			return Value{}, result
		}
		return result, Value{}
	}
	return Value{}, rt.Errorf(ErrSyntax, "unknown transformer kind")
}

// EvalTransformerSpec evaluates the expression that appears as the second
// subform of define-syntax/let-syntax/letrec-syntax: either a
// syntax-rules form (compiler-recognized syntax, like quote — its
// sub-forms are unevaluated patterns and templates, not expressions) or
// an ordinary expression that sc-macro-transformer/rsc-macro-transformer/
// er-macro-transformer's genuine prelude.scm definitions (prelude.scm)
// evaluate down to a transformer value. Per spec.md §4.3 and DESIGN.md's
// resolved Open Question, non-syntax-rules specs are always compiled and
// run against the global environment/frame: only the global environment
// is guaranteed to have live runtime values at macro-definition
// (expansion) time.
func (rt *Runtime) EvalTransformerSpec(defEnv *Env, spec Value) (Value, Value) {
	if head, ok := formHead(rt, spec); ok {
		_, sym := rt.resolveIdentifier(defEnv, head)
		if symbolName(sym) == "syntax-rules" {
			return rt.compileSyntaxRules(defEnv, spec)
		}
	}

	globalEnv := defEnv.globalEnv()
	code, cerr := rt.CompileExpr(globalEnv, spec)
	if IsError(cerr) {
		return Value{}, cerr
	}
	result := rt.RunCode(code, nil)
	if IsError(result) {
		return Value{}, result
	}
	if !IsTransformer(result) {
		return Value{}, rt.Errorf(ErrSyntax, "invalid transformer spec: %s", rt.WriteString(spec))
	}
	return result, Value{}
}
