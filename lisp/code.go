package lisp

// SourceSpan locates a compiled form in its originating source, carried on
// errorObj values and on individual instructions for diagnostic traces
// (spec.md §3's "each instruction carries source-position metadata for
// error reporting").
type SourceSpan struct {
	File string
	Line int
}

// Op is a single VM opcode (spec.md §4.4's instruction set).
type Op uint8

const (
	OpConst Op = iota
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal
	OpJumpIfFalse
	OpJump
	OpMakeClosure
	OpCall
	OpTailCall
	OpReturn
	OpPop
	OpDup
	OpCallCC
	OpApply
	OpMakeValues
	OpPushWind
	OpPopWind
)

var opNames = [...]string{
	OpConst:        "CONST",
	OpGetLocal:     "GET-LOCAL",
	OpSetLocal:     "SET-LOCAL",
	OpGetGlobal:    "GET-GLOBAL",
	OpSetGlobal:    "SET-GLOBAL",
	OpDefineGlobal: "DEFINE-GLOBAL",
	OpJumpIfFalse:  "JUMP-IF-FALSE",
	OpJump:         "JUMP",
	OpMakeClosure:  "MAKE-CLOSURE",
	OpCall:         "CALL",
	OpTailCall:     "TAIL-CALL",
	OpReturn:       "RETURN",
	OpPop:          "POP",
	OpDup:          "DUP",
	OpCallCC:       "CALL/CC",
	OpApply:        "APPLY",
	OpMakeValues:   "MAKE-VALUES",
	OpPushWind:     "PUSH-WIND",
	OpPopWind:      "POP-WIND",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

// Instr is one bytecode instruction. A and B hold operand-specific
// meaning: for GET-LOCAL/SET-LOCAL, A is lexical depth and B is frame
// slot; for CALL/TAIL-CALL, A is argument count; for CONST, A indexes the
// owning CodeBlock's Consts; for JUMP/JUMP-IF-FALSE, A is a target offset
// within the same CodeBlock; for MAKE-CLOSURE, A indexes Consts (holding a
// TCode entry that indexes embeddedCode).
type Instr struct {
	Op   Op
	A, B int
	Span SourceSpan
}

// CodeBlock is one compiled lambda body (or the top-level program), a flat
// instruction sequence plus its constant pool. Constants are deduplicated
// by the compiler using eqv?-like identity (see compile.go's internConst)
// so that repeated quoted literals share storage; nested lambda templates
// are never deduplicated (see embeddedCode).
type CodeBlock struct {
	Name     string // for stack traces; "" for anonymous lambdas
	Instrs   []Instr
	Consts   []Value
	NumSlots int // frame size: parameters + internal defines
	Variadic bool
	NumArgs  int // required (non-rest) parameter count

	// embeddedCode holds compiled lambda templates nested directly inside
	// this block, referenced from Consts by a Value{Tag: TCode, Data: index}
	// entry (see addProcTemplate in compile.go and OpMakeClosure in
	// vm.go). They live outside the ordinary dedup pool because two
	// lexically distinct lambda expressions must never share a template.
	embeddedCode []*CodeBlock
}

func newCodeBlock(name string) *CodeBlock {
	return &CodeBlock{Name: name}
}

func (c *CodeBlock) emit(op Op, a, b int, span SourceSpan) int {
	c.Instrs = append(c.Instrs, Instr{Op: op, A: a, B: b, Span: span})
	return len(c.Instrs) - 1
}

// internConst adds v to the constant pool, reusing an existing slot when v
// is eqv?-identical (or, for symbols, ID-identical) to one already present.
func (c *CodeBlock) internConst(v Value) int {
	for i, existing := range c.Consts {
		if constEq(existing, v) {
			return i
		}
	}
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1
}

func constEq(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TInt, TFloat, TBool, TChar, TSymbol, TUnspecified, TNil, TEOF:
		return a.Data == b.Data
	default:
		return false
	}
}

// patchJump backfills a forward jump's target once it is known.
func (c *CodeBlock) patchJump(at int, target int) {
	c.Instrs[at].A = target
}

// here returns the offset the next emitted instruction will occupy.
func (c *CodeBlock) here() int { return len(c.Instrs) }

// noSpan is used where no source position is available (synthetic
// instructions introduced by macro expansion of gensym'd bindings, for
// instance).
var noSpan = SourceSpan{}
