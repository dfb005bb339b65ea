package lisp

// registerPrimitives installs every built-in procedure into the global
// table, grouped into per-family files the way elps's lisplib packages
// each own one built-in family (lisplib/libmath, libstring, ...): here
// everything lives in one flat package instead of separate importable
// packages, matching this codebase's single-package design, but the file
// boundaries mirror that same grouping.
func registerPrimitives(rt *Runtime) {
	registerArithPrimitives(rt)
	registerPairPrimitives(rt)
	registerStringPrimitives(rt)
	registerVectorPrimitives(rt)
	registerCharPrimitives(rt)
	registerBytevectorPrimitives(rt)
	registerIOPrimitives(rt)
	registerControlPrimitives(rt)
	registerMacroPrimitives(rt)
	registerIdentifierPrimitives(rt)
	registerPredicatePrimitives(rt)
	registerQuasiquoteHelpers(rt)
}

// prim registers a fixed-or-variadic-arity primitive under name.
func prim(rt *Runtime, name string, min, max int, fn PrimitiveFunc) {
	rt.DefineGlobal(name, rt.NewPrimitive(name, min, max, fn))
}
