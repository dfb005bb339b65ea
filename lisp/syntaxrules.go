package lisp

import "github.com/hyperlisp/lumen/symbol"

// syntaxRule is one (pattern template) clause of a syntax-rules form.
type syntaxRule struct {
	pattern  Value
	template Value
}

// syntaxRulesSpec is the compiled form of a whole syntax-rules form: the
// literal identifiers that must match verbatim rather than bind, plus the
// ordered list of rules tried in turn (spec.md's derived syntax-rules
// layer, built entirely on top of er-macro-transformer).
type syntaxRulesSpec struct {
	ellipsis symbol.ID
	literals map[symbol.ID]bool
	rules    []syntaxRule
	defEnv   *Env
}

// compileSyntaxRules parses a (syntax-rules (lit...) (pattern template)...)
// form, or the R7RS (syntax-rules ellipsis (lit...) clause...) variant that
// names a custom ellipsis identifier, and wraps it as an er-macro-
// transformer over the compiled matcher/instantiator.
func (rt *Runtime) compileSyntaxRules(defEnv *Env, form Value) (Value, Value) {
	items, ok := rt.ListToSlice(form)
	if !ok || len(items) < 2 {
		return Value{}, rt.Errorf(ErrSyntax, "malformed syntax-rules form")
	}
	rest := items[1:]

	globalEnv := defEnv.globalEnv()
	spec := &syntaxRulesSpec{ellipsis: symbol.Intern("..."), defEnv: globalEnv}
	if rest[0].Tag == TSymbol {
		spec.ellipsis = GetSymbol(rest[0])
		rest = rest[1:]
	}
	if len(rest) < 1 {
		return Value{}, rt.Errorf(ErrSyntax, "syntax-rules: missing literal list")
	}
	litItems, ok := rt.ListToSlice(rest[0])
	if !ok {
		return Value{}, rt.Errorf(ErrSyntax, "syntax-rules: malformed literal list")
	}
	spec.literals = make(map[symbol.ID]bool, len(litItems))
	for _, lit := range litItems {
		if lit.Tag != TSymbol {
			return Value{}, rt.Errorf(ErrSyntax, "syntax-rules: literal must be an identifier")
		}
		spec.literals[GetSymbol(lit)] = true
	}

	for _, clause := range rest[1:] {
		clauseItems, ok := rt.ListToSlice(clause)
		if !ok || len(clauseItems) != 2 {
			return Value{}, rt.Errorf(ErrSyntax, "syntax-rules: malformed rule")
		}
		spec.rules = append(spec.rules, syntaxRule{pattern: clauseItems[0], template: clauseItems[1]})
	}

	proc := rt.NewPrimitive("syntax-rules-transformer", 3, 3, func(rt *Runtime, args []Value) Value {
		return rt.expandSyntaxRules(spec, args[0], args[1], args[2])
	})
	// Mirror EvalTransformerSpec's other three transformer kinds: the
	// er-macro-transformer this compiles into is itself only ever
	// evaluated with live values in the global environment, so its
	// defEnv (used by renameScope as the target of every rename) must be
	// that same global environment rather than the lexical site of the
	// enclosing define-syntax/let-syntax.
	return rt.makeTransformer(kindER, proc, globalEnv), Value{}
}

// matchEnv accumulates pattern variable bindings during matching. A bound
// value is either a plain Value (matched at ellipsis depth 0) or a []Value
// (one level of ellipsis) whose own elements may again be []Value for
// nested ellipses, mirroring the recursive structure syntax-rules allows.
type matchEnv map[symbol.ID]interface{}

func (rt *Runtime) expandSyntaxRules(spec *syntaxRulesSpec, form, renameProc, compareProc Value) Value {
	// The pattern's own keyword position is conventionally ignored (it
	// matches anything, including "_"), so only the operands are matched.
	useForm := rt.Cdr(form)
	for _, rule := range spec.rules {
		patOperands := rt.Cdr(rule.pattern)
		env := matchEnv{}
		if rt.matchPattern(spec, patOperands, useForm, env, renameProc, compareProc) {
			return rt.instantiateTemplate(spec, rule.template, env, renameProc)
		}
	}
	return rt.Errorf(ErrSyntax, "no matching syntax-rules clause")
}

// instantiateTemplate builds the expansion for a matched rule: pattern
// variables are substituted with their bound match (spliced at each
// ellipsis level they were collected under), the ellipsis identifier
// escaped as "(... x)" reproduces x literally, and every other identifier
// is passed through renameProc so it resolves hygienically at the macro's
// definition site rather than colliding with bindings visible at the use
// site.
func (rt *Runtime) instantiateTemplate(spec *syntaxRulesSpec, tmpl Value, env matchEnv, renameProc Value) Value {
	switch tmpl.Tag {
	case TSymbol:
		sym := GetSymbol(tmpl)
		if bound, ok := env[sym]; ok {
			v, isLeaf := bound.(Value)
			if !isLeaf {
				return rt.Errorf(ErrSyntax, "pattern variable %s used without enough ellipses", symbolName(sym))
			}
			return v
		}
		return rt.Apply(renameProc, []Value{tmpl})

	case TPair:
		if rt.isEllipsisSym(spec, rt.Car(tmpl)) && rt.Cdr(tmpl).Tag == TPair {
			// (... escaped) reproduces escaped verbatim, with no
			// substitution or further ellipsis processing.
			return rt.escapeEllipsisTemplate(rt.Car(rt.Cdr(tmpl)))
		}
		if rt.Cdr(tmpl).Tag == TPair && rt.isEllipsisSym(spec, rt.Car(rt.Cdr(tmpl))) {
			sub := rt.Car(tmpl)
			rest := rt.Cdr(rt.Cdr(tmpl))
			// Consume any additional immediately-adjacent ellipses,
			// each flattening one more level (R7RS's "... ..." splicing).
			extraFlatten := 0
			for rest.Tag == TPair && rt.isEllipsisSym(spec, rt.Car(rest)) {
				extraFlatten++
				rest = rt.Cdr(rest)
			}
			vars := rt.patternVars(spec, sub)
			count := -1
			for _, v := range vars {
				if seq, ok := env[v].([]interface{}); ok {
					if count < 0 {
						count = len(seq)
					}
				}
			}
			if count < 0 {
				// No pattern variable under this "..." was ever bound to a
				// matched sequence, meaning the template's ellipsis depth
				// here exceeds every pattern variable's depth in the
				// matched pattern (spec.md §4.3: "ellipsis depths in the
				// template must not exceed those in the pattern, checked
				// at expansion time"). Silently treating this as count=0
				// would expand "(list x ...)" to "(list)" instead of
				// reporting the malformed template.
				return rt.Errorf(ErrSyntax, "syntax-rules: template ellipsis has no pattern variable at its depth: %s", rt.WriteString(sub))
			}
			var expanded []Value
			for i := 0; i < count; i++ {
				subEnv := matchEnv{}
				for k, v := range env {
					subEnv[k] = v
				}
				for _, v := range vars {
					if seq, ok := env[v].([]interface{}); ok && i < len(seq) {
						subEnv[v] = seq[i]
					}
				}
				item := rt.instantiateTemplate(spec, sub, subEnv, renameProc)
				if IsError(item) {
					return item
				}
				if extraFlatten > 0 {
					if flat, ok := rt.ListToSlice(item); ok {
						expanded = append(expanded, flat...)
						continue
					}
				}
				expanded = append(expanded, item)
			}
			tail := rt.instantiateTemplate(spec, rest, env, renameProc)
			if IsError(tail) {
				return tail
			}
			return appendImproper(rt, expanded, tail)
		}
		car := rt.instantiateTemplate(spec, rt.Car(tmpl), env, renameProc)
		if IsError(car) {
			return car
		}
		cdr := rt.instantiateTemplate(spec, rt.Cdr(tmpl), env, renameProc)
		if IsError(cdr) {
			return cdr
		}
		return rt.Cons(car, cdr)

	case TVector:
		asList := rt.vectorAsList(tmpl)
		result := rt.instantiateTemplate(spec, asList, env, renameProc)
		if IsError(result) {
			return result
		}
		items, _ := rt.ListToSlice(result)
		return rt.NewVector(items)

	default:
		return tmpl
	}
}

// escapeEllipsisTemplate returns a template verbatim, with no pattern
// variable substitution, renaming or ellipsis expansion, implementing
// (... template) escapes.
func (rt *Runtime) escapeEllipsisTemplate(tmpl Value) Value {
	return tmpl
}

// matchPattern matches form against pat, threading renameProc/compareProc
// down so a literal identifier in pat (declared in syntax-rules' literals
// list) is matched hygienically: per spec.md §4.3, a pattern literal
// matches only a use-site identifier that compares identifier=? to a
// rename of that literal, not any symbol with the same spelling — a
// literal keyword the use site has shadowed or macro-introduced under a
// different identity must not match.
func (rt *Runtime) matchPattern(spec *syntaxRulesSpec, pat, form Value, env matchEnv, renameProc, compareProc Value) bool {
	switch {
	case pat.Tag == TSymbol:
		sym := GetSymbol(pat)
		if sym == spec.ellipsis {
			return false // handled by the caller peeking ahead, never matched directly
		}
		if symbolName(sym) == "_" {
			return true
		}
		if spec.literals[sym] {
			if !rt.IsIdentifier(form) {
				return false
			}
			renamedLit := rt.Apply(renameProc, []Value{pat})
			return IsTruthy(rt.Apply(compareProc, []Value{form, renamedLit}))
		}
		env[sym] = form
		return true

	case pat.Tag == TPair:
		return rt.matchListPattern(spec, pat, form, env, renameProc, compareProc)

	case pat.Tag == TVector:
		if form.Tag != TVector {
			return false
		}
		return rt.matchPattern(spec, rt.vectorAsList(pat), rt.vectorAsList(form), env, renameProc, compareProc)

	case pat.Tag == TNil:
		return form.Tag == TNil

	default:
		return rt.EqualValues(pat, form)
	}
}

// vectorAsList reinterprets a vector's elements as a proper list purely
// for reusing the pair-pattern matcher/instantiator on #(...) patterns.
func (rt *Runtime) vectorAsList(v Value) Value {
	return rt.List(rt.VectorSlice(v)...)
}

func (rt *Runtime) matchListPattern(spec *syntaxRulesSpec, pat, form Value, env matchEnv, renameProc, compareProc Value) bool {
	if rt.Cdr(pat).Tag == TPair && rt.isEllipsisSym(spec, rt.Car(rt.Cdr(pat))) {
		subPat := rt.Car(pat)
		afterEllipsis := rt.Cdr(rt.Cdr(pat))
		tailLen := rt.properPrefixLen(afterEllipsis)

		items, ok := rt.ListToSlice(form)
		var tail Value = Nil()
		if !ok {
			// improper list form: split into items + dotted tail manually
			items = nil
			cur := form
			for cur.Tag == TPair {
				items = append(items, rt.Car(cur))
				cur = rt.Cdr(cur)
			}
			tail = cur
		}
		if len(items) < tailLen {
			return false
		}
		repeatCount := len(items) - tailLen
		vars := rt.patternVars(spec, subPat)
		collected := make(map[symbol.ID][]interface{}, len(vars))
		for _, v := range vars {
			collected[v] = nil
		}
		for i := 0; i < repeatCount; i++ {
			sub := matchEnv{}
			if !rt.matchPattern(spec, subPat, items[i], sub, renameProc, compareProc) {
				return false
			}
			for _, v := range vars {
				collected[v] = append(collected[v], sub[v])
			}
		}
		for _, v := range vars {
			env[v] = collected[v]
		}
		remaining := rt.List(items[repeatCount:]...)
		if tail.Tag != TNil {
			remaining = appendImproper(rt, items[repeatCount:], tail)
		}
		return rt.matchPattern(spec, afterEllipsis, remaining, env, renameProc, compareProc)
	}

	if pat.Tag != TPair {
		return rt.matchPattern(spec, pat, form, env, renameProc, compareProc)
	}
	if form.Tag != TPair {
		return false
	}
	if !rt.matchPattern(spec, rt.Car(pat), rt.Car(form), env, renameProc, compareProc) {
		return false
	}
	return rt.matchPattern(spec, rt.Cdr(pat), rt.Cdr(form), env, renameProc, compareProc)
}

func appendImproper(rt *Runtime, items []Value, tail Value) Value {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = rt.Cons(items[i], result)
	}
	return result
}

func (rt *Runtime) isEllipsisSym(spec *syntaxRulesSpec, v Value) bool {
	return v.Tag == TSymbol && GetSymbol(v) == spec.ellipsis
}

// properPrefixLen counts the fixed-length trailing pattern elements after
// an ellipsis (spec.md's "trailing fixed patterns after an ellipsis"
// case, e.g. (a ... b c)).
func (rt *Runtime) properPrefixLen(pat Value) int {
	n := 0
	for pat.Tag == TPair {
		n++
		pat = rt.Cdr(pat)
	}
	return n
}

// patternVars collects every pattern variable bound anywhere within pat
// (excluding literals, "_", and the ellipsis identifier itself).
func (rt *Runtime) patternVars(spec *syntaxRulesSpec, pat Value) []symbol.ID {
	var out []symbol.ID
	var walk func(Value)
	walk = func(v Value) {
		switch v.Tag {
		case TSymbol:
			sym := GetSymbol(v)
			if sym == spec.ellipsis || spec.literals[sym] || symbolName(sym) == "_" {
				return
			}
			out = append(out, sym)
		case TPair:
			walk(rt.Car(v))
			walk(rt.Cdr(v))
		case TVector:
			for _, x := range rt.VectorSlice(v) {
				walk(x)
			}
		}
	}
	walk(pat)
	return out
}
