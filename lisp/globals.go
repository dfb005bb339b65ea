package lisp

import "github.com/hyperlisp/lumen/symbol"

// globalTable backs BindValue bindings whose Env is the global Env: a
// simple synchronization-free map, safe because lumen's evaluation model
// is single-threaded and non-reentrant per Runtime (spec.md §5).
type globalTable struct {
	values map[symbol.ID]Value
}

func (rt *Runtime) ensureGlobals() *globalTable {
	if rt.globals == nil {
		rt.globals = &globalTable{values: make(map[symbol.ID]Value)}
	}
	return rt.globals
}

func (rt *Runtime) globalValue(sym symbol.ID) (Value, bool) {
	if rt.globals == nil {
		return Value{}, false
	}
	v, ok := rt.globals.values[sym]
	return v, ok
}

func (rt *Runtime) setGlobalValue(sym symbol.ID, v Value) {
	rt.ensureGlobals().values[sym] = v
}

// DefineGlobal installs name as a global variable bound to v, used by
// primitive registration and by the DEFINE-GLOBAL instruction.
func (rt *Runtime) DefineGlobal(name string, v Value) {
	sym := rt.Symbols.Intern(name)
	rt.Global.DefineGlobal(Symbol(sym))
	rt.setGlobalValue(sym, v)
}

// GlobalValue looks up a global variable by name, for host-Go callers
// (cmd/lumen, lumentest) that want to fetch a top-level definition after
// evaluation.
func (rt *Runtime) GlobalValue(name string) (Value, bool) {
	sym, ok := rt.Symbols.Peek(name)
	if !ok {
		return Value{}, false
	}
	return rt.globalValue(sym)
}

// specialForms lists every keyword compile.go handles directly rather
// than treating as a procedure call or macro use (spec.md §4.3/§4.4).
var specialForms = []string{
	"quote", "syntax-quote", "if", "define", "set!", "lambda",
	"begin", "define-syntax", "let-syntax", "letrec-syntax",
	"syntax-rules", "quasiquote", "unquote", "unquote-splicing",
}

// symbolFromRaw and symbolName convert between a symbol.ID and the plain
// int operand instructions carry (Instr.A/.B have no room for a distinct
// symbol.ID type without complicating every other opcode's operand
// shape).
func symbolFromRaw(raw int) symbol.ID { return symbol.ID(raw) }
func symbolName(sym symbol.ID) string {
	name, _ := symbol.Name(sym)
	return name
}

func installSpecialForms(env *Env) {
	for _, name := range specialForms {
		sym := symbol.Intern(name)
		env.names[bindKey{sym: sym}] = &Binding{Kind: BindSpecialForm, Special: name}
	}
	for _, name := range []string{"else", "=>", "...", "_"} {
		sym := symbol.Intern(name)
		env.names[bindKey{sym: sym}] = &Binding{Kind: BindReserved, Special: name}
	}
}
