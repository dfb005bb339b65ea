package lisp

import "github.com/hyperlisp/lumen/symbol"

// compiler holds the state threaded through one compilation of a single
// lambda body (or the implicit zero-argument body CompileExpr wraps a bare
// expression in): the CodeBlock being built and the lexical Env compiled
// references resolve against.
type compiler struct {
	rt   *Runtime
	code *CodeBlock
	env  *Env
}

// CompileExpr compiles a single expression as if it were the body of a
// thunk: (lambda () form). Used by define-syntax/let-syntax/letrec-syntax
// to build the transformer-constructing expression.
func (rt *Runtime) CompileExpr(env *Env, form Value) (*CodeBlock, Value) {
	return rt.CompileBody(env, []Value{form})
}

// CompileBody compiles forms as a lambda body with no parameters: internal
// defines are lifted letrec*-style, and the final form compiles in tail
// position.
func (rt *Runtime) CompileBody(env *Env, forms []Value) (*CodeBlock, Value) {
	body := env.child()
	code := newCodeBlock("")
	c := &compiler{rt: rt, code: code, env: body}
	if err := c.compileBodyForms(forms, true); IsError(err) {
		return nil, err
	}
	code.NumSlots = body.nextSlot
	return code, Value{}
}

// CompileTopLevel compiles a whole program (a file, or one REPL chunk) as
// a body evaluated directly against the global Env/Frame: internal
// defines behave as top-level defines (spec.md §4.4 allows define at top
// level to install directly into the global table rather than allocating
// a frame slot, since env.isGlobal routes DefineLocal to DefineGlobal).
func (rt *Runtime) CompileTopLevel(forms []Value) (*CodeBlock, Value) {
	code := newCodeBlock("*toplevel*")
	c := &compiler{rt: rt, code: code, env: rt.Global}
	if err := c.compileBodyForms(forms, true); IsError(err) {
		return nil, err
	}
	code.NumSlots = 0
	return code, Value{}
}

// compileBodyForms implements the shared body-compilation algorithm:
// classify the leading run of definitions (define, define-syntax, and
// begin forms that splice further definitions), pre-allocate slots for
// every internal define so mutual recursion works (letrec* scoping), then
// emit code for the whole sequence in original textual order.
func (c *compiler) compileBodyForms(forms []Value, tail bool) Value {
	forms = c.flattenBeginPrefix(forms)

	sawExpression := false
	for _, f := range forms {
		name, isSpecial := c.headSpecialName(f)
		switch {
		case isSpecial && name == "define":
			id, _, err := c.parseDefine(f)
			if IsError(err) {
				return err
			}
			c.env.DefineLocal(id)
		case isSpecial && name == "define-syntax":
			if sawExpression {
				return c.rt.Errorf(ErrSyntax, "define-syntax may not follow an expression in a body")
			}
			if err := c.installDefineSyntax(f); IsError(err) {
				return err
			}
		default:
			sawExpression = true
		}
	}

	for i, f := range forms {
		last := i == len(forms)-1
		name, isSpecial := c.headSpecialName(f)
		if isSpecial && name == "define-syntax" {
			// Already installed above; contributes no code of its own, but
			// if it's the final form in a tail body something still has to
			// leave a result on the stack and RETURN, the way the "define"
			// case below does.
			if last && tail {
				c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
				c.code.emit(OpReturn, 0, 0, noSpan)
			}
			continue
		}
		if isSpecial && name == "define" {
			if err := c.compileDefineInit(f); IsError(err) {
				return err
			}
			if last && tail {
				c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
				c.code.emit(OpReturn, 0, 0, noSpan)
			}
			continue
		}
		if !last {
			if err := c.compileForm(f, false); IsError(err) {
				return err
			}
			c.code.emit(OpPop, 0, 0, noSpan)
			continue
		}
		selfReturning, err := c.compileFormTail(f, tail)
		if IsError(err) {
			return err
		}
		if tail && !selfReturning {
			c.code.emit(OpReturn, 0, 0, noSpan)
		}
	}
	if len(forms) == 0 && tail {
		c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
		c.code.emit(OpReturn, 0, 0, noSpan)
	}
	return Value{}
}

// flattenBeginPrefix splices the contents of any (begin ...) forms that
// appear before the first non-definition expression, since a begin in
// definition position is itself allowed to contain further definitions.
func (c *compiler) flattenBeginPrefix(forms []Value) []Value {
	var out []Value
	doneSplicing := false
	for _, f := range forms {
		if !doneSplicing {
			if name, ok := c.headSpecialName(f); ok && name == "begin" {
				inner, ok := c.rt.ListToSlice(c.rt.Cdr(f))
				if ok {
					out = append(out, c.flattenBeginPrefix(inner)...)
					continue
				}
			} else if !c.isDefinitionForm(f) {
				doneSplicing = true
			}
		}
		out = append(out, f)
	}
	return out
}

func (c *compiler) isDefinitionForm(f Value) bool {
	name, ok := c.headSpecialName(f)
	return ok && (name == "define" || name == "define-syntax" || name == "begin")
}

// headSpecialName reports the special-form name a combination's head
// resolves to in c.env, if any (macro keywords and ordinary procedure
// calls both report ok == false here).
func (c *compiler) headSpecialName(f Value) (string, bool) {
	if !IsPair(f) {
		return "", false
	}
	head := c.rt.Car(f)
	if !c.rt.IsIdentifier(head) {
		return "", false
	}
	b, _, ok := c.rt.LookupIdentifier(c.env, head)
	if !ok || b.Kind != BindSpecialForm {
		return "", false
	}
	return b.Special, true
}

// parseDefine returns the identifier being bound (a bare symbol, or a
// syntactic closure when the target arrived through macro-hygienic
// renaming, spec.md §4.3's binding-site rule) and its initializer form.
func (c *compiler) parseDefine(f Value) (Value, Value, Value) {
	items, ok := c.rt.ListToSlice(f)
	if !ok || len(items) < 2 {
		return Value{}, Value{}, c.rt.Errorf(ErrSyntax, "malformed define")
	}
	target := items[1]
	if IsPair(target) {
		// (define (name . formals) body...) sugar: rewrite as
		// (define name (lambda formals body...)).
		nameV := c.rt.Car(target)
		if !c.rt.IsIdentifier(nameV) {
			return Value{}, Value{}, c.rt.Errorf(ErrSyntax, "malformed define target")
		}
		formals := c.rt.Cdr(target)
		lambdaBody := c.rt.List(items[2:]...)
		lambdaForm := c.rt.Cons(Symbol(symbol.Intern("lambda")), c.rt.Cons(formals, lambdaBody))
		return nameV, lambdaForm, Value{}
	}
	if !c.rt.IsIdentifier(target) {
		return Value{}, Value{}, c.rt.Errorf(ErrSyntax, "malformed define target")
	}
	var init Value
	if len(items) >= 3 {
		init = items[2]
	} else {
		init = Unspecified()
	}
	return target, init, Value{}
}

func (c *compiler) compileDefineInit(f Value) Value {
	id, init, err := c.parseDefine(f)
	if IsError(err) {
		return err
	}
	if cerr := c.compileForm(init, false); IsError(cerr) {
		return cerr
	}
	c.emitBind(id)
	return Value{}
}

// emitBind emits the store instruction for an identifier previously
// declared via DefineLocal/DefineGlobal, consuming the value on top of the
// stack and leaving nothing (callers that need the value must DUP first).
func (c *compiler) emitBind(id Value) {
	b, _, _ := c.rt.LookupIdentifier(c.env, id)
	if b.GlobalSlot != 0 || c.env.isGlobal {
		c.code.emit(OpDefineGlobal, int(rawSymbolOf(c.rt, id)), 0, noSpan)
	} else {
		c.code.emit(OpSetLocal, b.Depth, b.Slot, noSpan)
	}
}

func (c *compiler) installDefineSyntax(f Value) Value {
	items, ok := c.rt.ListToSlice(f)
	if !ok || len(items) != 3 {
		return c.rt.Errorf(ErrSyntax, "malformed define-syntax")
	}
	if !c.rt.IsIdentifier(items[1]) {
		return c.rt.Errorf(ErrSyntax, "define-syntax target must be an identifier")
	}
	transformer, err := c.rt.EvalTransformerSpec(c.env, items[2])
	if IsError(err) {
		return err
	}
	c.env.DefineMacro(items[1], transformer, c.env)
	return Value{}
}

// compileForm compiles form for its value, never in tail position.
func (c *compiler) compileForm(form Value, tail bool) Value {
	_, err := c.compileFormTail(form, tail)
	return err
}

// compileFormTail compiles form, honoring tail, and reports whether it
// already emitted a control transfer (TAIL-CALL) that makes a subsequent
// RETURN redundant.
func (c *compiler) compileFormTail(form Value, tail bool) (bool, Value) {
	switch form.Tag {
	case TSymbol:
		return false, c.compileVarRef(form)
	case TPair:
		return c.compileCombination(form, tail)
	case TSyntacticClosure:
		// An identifier-valued syntactic closure IS the variable reference
		// (spec.md §4.3's binding-site rule requires resolving it by its own
		// identity first, see (*Runtime).LookupIdentifier): stripping it
		// here would silently discard that identity and fall back to
		// resolving its bare name by ordinary lexical scoping, capturing
		// whatever a use site happens to have bound under the same
		// spelling. Only a closure wrapping a compound form (a whole
		// expression fragment a macro spliced in) should have its outer
		// layer peeled away to reveal that structure.
		if c.rt.IsIdentifier(form) {
			return false, c.compileVarRef(form)
		}
		return c.compileFormTail(c.rt.StripOutermost(form), tail)
	default:
		c.code.emit(OpConst, c.code.internConst(form), 0, noSpan)
		return false, Value{}
	}
}

func (c *compiler) compileVarRef(form Value) Value {
	name := symbolName(rawSymbolOf(c.rt, form))
	b, foundEnv, ok := c.rt.LookupIdentifier(c.env, form)
	if !ok {
		return c.rt.Errorf(ErrUnbound, "unbound variable: %s", name)
	}
	switch b.Kind {
	case BindValue:
		if foundEnv.isGlobal {
			c.code.emit(OpGetGlobal, int(b.GlobalSlot), 0, noSpan)
		} else {
			depth := c.env.depth - foundEnv.depth
			c.code.emit(OpGetLocal, depth, b.Slot, noSpan)
		}
		return Value{}
	case BindMacro:
		return c.rt.Errorf(ErrSyntax, "%s: macro keyword used as a variable", name)
	default:
		return c.rt.Errorf(ErrSyntax, "%s: syntactic keyword used as a variable", name)
	}
}

func (c *compiler) compileCombination(form Value, tail bool) (bool, Value) {
	head := c.rt.Car(form)
	if c.rt.IsIdentifier(head) {
		if b, _, ok := c.rt.LookupIdentifier(c.env, head); ok {
			switch b.Kind {
			case BindSpecialForm:
				return c.compileSpecialForm(b.Special, form, tail)
			case BindMacro:
				expanded, err := c.rt.Expand(c.env, form)
				if IsError(err) {
					return false, err
				}
				return c.compileFormTail(expanded, tail)
			}
		}
	}
	return c.compileApplication(form, tail)
}

func (c *compiler) compileApplication(form Value, tail bool) (bool, Value) {
	items, ok := c.rt.ListToSlice(form)
	if !ok || len(items) == 0 {
		return false, c.rt.Errorf(ErrSyntax, "improper combination")
	}
	if err := c.compileForm(items[0], false); IsError(err) {
		return false, err
	}
	for _, arg := range items[1:] {
		if err := c.compileForm(arg, false); IsError(err) {
			return false, err
		}
	}
	argc := len(items) - 1
	if tail {
		c.code.emit(OpTailCall, argc, 0, noSpan)
		return true, Value{}
	}
	c.code.emit(OpCall, argc, 0, noSpan)
	return false, Value{}
}

func (c *compiler) compileSpecialForm(name string, form Value, tail bool) (bool, Value) {
	switch name {
	case "quote":
		datum := c.rt.Car(c.rt.Cdr(form))
		c.code.emit(OpConst, c.code.internConst(c.rt.StripOutermost(datum)), 0, noSpan)
		return false, Value{}
	case "syntax-quote":
		datum := c.rt.Car(c.rt.Cdr(form))
		c.code.emit(OpConst, c.code.internConst(datum), 0, noSpan)
		return false, Value{}
	case "if":
		return c.compileIf(form, tail)
	case "set!":
		return false, c.compileSet(form)
	case "lambda":
		return false, c.compileLambda(form)
	case "begin":
		items, _ := c.rt.ListToSlice(c.rt.Cdr(form))
		return c.compileBeginSeq(items, tail)
	case "define":
		return false, c.rt.Errorf(ErrSyntax, "define is only permitted at the start of a body or at top level")
	case "define-syntax":
		return false, c.rt.Errorf(ErrSyntax, "define-syntax is only permitted at the start of a body or at top level")
	case "let-syntax", "letrec-syntax":
		return c.compileLetSyntax(form, tail)
	case "quasiquote":
		return false, c.compileQuasiquote(c.rt.Car(c.rt.Cdr(form)), 1)
	case "unquote", "unquote-splicing":
		return false, c.rt.Errorf(ErrSyntax, "%s not valid outside quasiquote", name)
	case "syntax-rules":
		return false, c.rt.Errorf(ErrSyntax, "syntax-rules is only valid as a define-syntax transformer spec")
	}
	return false, c.rt.Errorf(ErrSyntax, "unimplemented special form: %s", name)
}

func (c *compiler) compileBeginSeq(items []Value, tail bool) (bool, Value) {
	if len(items) == 0 {
		c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
		return false, Value{}
	}
	for _, f := range items[:len(items)-1] {
		if err := c.compileForm(f, false); IsError(err) {
			return false, err
		}
		c.code.emit(OpPop, 0, 0, noSpan)
	}
	return c.compileFormTail(items[len(items)-1], tail)
}

func (c *compiler) compileIf(form Value, tail bool) (bool, Value) {
	items, ok := c.rt.ListToSlice(c.rt.Cdr(form))
	if !ok || len(items) < 2 || len(items) > 3 {
		return false, c.rt.Errorf(ErrSyntax, "malformed if")
	}
	if err := c.compileForm(items[0], false); IsError(err) {
		return false, err
	}
	jumpFalse := c.code.emit(OpJumpIfFalse, 0, 0, noSpan)
	consequentReturns, err := c.compileFormTail(items[1], tail)
	if IsError(err) {
		return false, err
	}
	if tail && !consequentReturns {
		c.code.emit(OpReturn, 0, 0, noSpan)
		consequentReturns = true
	}
	jumpEnd := -1
	if !tail {
		jumpEnd = c.code.emit(OpJump, 0, 0, noSpan)
	}
	c.code.patchJump(jumpFalse, c.code.here())
	var alternateReturns bool
	if len(items) == 3 {
		alternateReturns, err = c.compileFormTail(items[2], tail)
		if IsError(err) {
			return false, err
		}
	} else {
		c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
		if tail {
			c.code.emit(OpReturn, 0, 0, noSpan)
			alternateReturns = true
		}
	}
	if jumpEnd >= 0 {
		c.code.patchJump(jumpEnd, c.code.here())
	}
	return tail && consequentReturns && alternateReturns, Value{}
}

func (c *compiler) compileSet(form Value) Value {
	items, ok := c.rt.ListToSlice(c.rt.Cdr(form))
	if !ok || len(items) != 2 || !c.rt.IsIdentifier(items[0]) {
		return c.rt.Errorf(ErrSyntax, "malformed set!")
	}
	if err := c.compileForm(items[1], false); IsError(err) {
		return err
	}
	b, foundEnv, ok := c.rt.LookupIdentifier(c.env, items[0])
	if !ok {
		return c.rt.Errorf(ErrUnbound, "unbound variable: %s", symbolName(rawSymbolOf(c.rt, items[0])))
	}
	if foundEnv.isGlobal {
		c.code.emit(OpSetGlobal, int(b.GlobalSlot), 0, noSpan)
	} else {
		depth := c.env.depth - foundEnv.depth
		c.code.emit(OpSetLocal, depth, b.Slot, noSpan)
	}
	c.code.emit(OpConst, c.code.internConst(Unspecified()), 0, noSpan)
	return Value{}
}

func (c *compiler) compileLambda(form Value) Value {
	items, ok := c.rt.ListToSlice(c.rt.Cdr(form))
	if !ok || len(items) < 1 {
		return c.rt.Errorf(ErrSyntax, "malformed lambda")
	}
	formals := items[0]
	bodyForms := items[1:]

	lambdaEnv := c.env.child()
	names, variadic, err := c.rt.parseFormals(formals)
	if IsError(err) {
		return err
	}
	for _, n := range names {
		lambdaEnv.DefineLocal(n)
	}

	code := newCodeBlock("")
	code.Variadic = variadic
	code.NumArgs = len(names)
	if variadic {
		code.NumArgs--
	}
	sub := &compiler{rt: c.rt, code: code, env: lambdaEnv}
	if berr := sub.compileBodyForms(bodyForms, true); IsError(berr) {
		return berr
	}
	code.NumSlots = lambdaEnv.nextSlot

	constIdx := c.code.addProcTemplate(code)
	c.code.emit(OpMakeClosure, constIdx, 0, noSpan)
	return Value{}
}

// addProcTemplate appends a code-block template to the constant pool
// directly (bypassing internConst's dedup, since two lexically distinct
// lambda forms must never share a compiled template even if their source
// happens to look identical) and returns the constant index MAKE-CLOSURE
// should reference.
func (c *CodeBlock) addProcTemplate(code *CodeBlock) int {
	idx := len(c.embeddedCode)
	c.embeddedCode = append(c.embeddedCode, code)
	c.Consts = append(c.Consts, Value{Tag: TCode, Data: uint64(idx)})
	return len(c.Consts) - 1
}

func (c *compiler) compileLetSyntax(form Value, tail bool) (bool, Value) {
	items, ok := c.rt.ListToSlice(c.rt.Cdr(form))
	if !ok || len(items) < 1 {
		return false, c.rt.Errorf(ErrSyntax, "malformed let-syntax")
	}
	bindings, ok := c.rt.ListToSlice(items[0])
	if !ok {
		return false, c.rt.Errorf(ErrSyntax, "malformed let-syntax bindings")
	}
	scopeEnv := c.env.child()
	scopeEnv.depth = c.env.depth // let-syntax introduces no runtime frame
	for _, binding := range bindings {
		pair, ok := c.rt.ListToSlice(binding)
		if !ok || len(pair) != 2 || !c.rt.IsIdentifier(pair[0]) {
			return false, c.rt.Errorf(ErrSyntax, "malformed let-syntax binding")
		}
		transformer, err := c.rt.EvalTransformerSpec(c.env, pair[1])
		if IsError(err) {
			return false, err
		}
		scopeEnv.names[identKey(pair[0])] = &Binding{Kind: BindMacro, Transformer: transformer, DefEnv: scopeEnv}
	}
	sub := &compiler{rt: c.rt, code: c.code, env: scopeEnv}
	return sub.compileBeginSeq(items[1:], tail)
}

// parseFormals splits a lambda formals spec into parameter identifiers and
// whether the last one is a rest parameter, accepting the three R5RS
// shapes: (a b c), (a b . rest), and rest. A formal may be a bare symbol or
// a syntactic closure — er-macro-transformer's rename procedure and
// syntax-rules both introduce template-local formals this way (spec.md
// §4.3's binding-site rule), so IsIdentifier is the acceptance test, not a
// bare TSymbol tag check.
func (rt *Runtime) parseFormals(formals Value) ([]Value, bool, Value) {
	var names []Value
	cur := formals
	for cur.Tag == TPair {
		id := rt.Car(cur)
		if !rt.IsIdentifier(id) {
			return nil, false, rt.Errorf(ErrSyntax, "malformed formal parameter list")
		}
		names = append(names, id)
		cur = rt.Cdr(cur)
	}
	if rt.IsIdentifier(cur) {
		names = append(names, cur)
		return names, true, Value{}
	}
	if cur.Tag != TNil {
		return nil, false, rt.Errorf(ErrSyntax, "malformed formal parameter list")
	}
	return names, false, Value{}
}

// compileQuasiquote lowers a quasiquote template into runtime cons/append/
// list->vector calls, tracking nesting depth so nested quasiquote/unquote
// pairs balance correctly (spec.md's quasiquote module). Calls to the
// %qq-* helpers follow the ordinary application calling convention: push
// the callee, then each argument left to right, then CALL.
func (c *compiler) compileQuasiquote(tmpl Value, depth int) Value {
	if name, ok := c.headSpecialName(tmpl); ok && name == "unquote" && depth == 1 {
		return c.compileForm(c.rt.Car(c.rt.Cdr(tmpl)), false)
	}
	if name, ok := c.headSpecialName(tmpl); ok && name == "unquote" {
		return c.emitQQTagged("unquote", tmpl, depth-1)
	}
	if name, ok := c.headSpecialName(tmpl); ok && name == "quasiquote" {
		return c.emitQQTagged("quasiquote", tmpl, depth+1)
	}
	if IsPair(tmpl) {
		head := c.rt.Car(tmpl)
		if innerName, ok := c.headSpecialName(head); ok && innerName == "unquote-splicing" && depth == 1 {
			return c.emitQQCall2("%qq-append",
				func() Value { return c.compileForm(c.rt.Car(c.rt.Cdr(head)), false) },
				func() Value { return c.compileQuasiquote(c.rt.Cdr(tmpl), depth) })
		}
		return c.emitQQCall2("%qq-cons",
			func() Value { return c.compileQuasiquote(head, depth) },
			func() Value { return c.compileQuasiquote(c.rt.Cdr(tmpl), depth) })
	}
	if IsVector(tmpl) {
		listForm := c.rt.List(c.rt.VectorSlice(tmpl)...)
		return c.emitQQCall1("%qq-list->vector", func() Value { return c.compileQuasiquote(listForm, depth) })
	}
	c.code.emit(OpConst, c.code.internConst(tmpl), 0, noSpan)
	return Value{}
}

// emitQQTagged reconstructs (tag inner) as data at runtime, used when a
// nested quasiquote or an unquote deeper than the innermost level appears
// inside the template and so must be preserved rather than evaluated.
func (c *compiler) emitQQTagged(tag string, form Value, innerDepth int) Value {
	return c.emitQQCall2("%qq-cons",
		func() Value {
			c.code.emit(OpConst, c.code.internConst(Symbol(symbol.Intern(tag))), 0, noSpan)
			return Value{}
		},
		func() Value {
			return c.emitQQCall2("%qq-cons",
				func() Value { return c.compileQuasiquote(c.rt.Car(c.rt.Cdr(form)), innerDepth) },
				func() Value {
					c.code.emit(OpConst, c.code.internConst(Nil()), 0, noSpan)
					return Value{}
				})
		})
}

func (c *compiler) emitQQCall1(name string, arg func() Value) Value {
	c.emitGlobalRef(name)
	if err := arg(); IsError(err) {
		return err
	}
	c.code.emit(OpCall, 1, 0, noSpan)
	return Value{}
}

func (c *compiler) emitQQCall2(name string, arg1, arg2 func() Value) Value {
	c.emitGlobalRef(name)
	if err := arg1(); IsError(err) {
		return err
	}
	if err := arg2(); IsError(err) {
		return err
	}
	c.code.emit(OpCall, 2, 0, noSpan)
	return Value{}
}

// emitGlobalRef pushes a reference to a runtime-provided helper procedure
// installed alongside the primitives (qq-cons, qq-append, qq-list->vector),
// kept as ordinary global bindings rather than dedicated opcodes so the
// quasiquote lowering stays a plain compiler transformation.
func (c *compiler) emitGlobalRef(name string) {
	sym := symbol.Intern(name)
	c.code.emit(OpGetGlobal, int(sym), 0, noSpan)
}
