package lisp

import (
	"fmt"
	"strconv"
	"strings"
)

// WriteString renders v the way `write` does: strings and chars are
// escaped/named so the result can, in principle, be read back. Mirrors the
// two-mode Format(quoted bool) split on v2/pkg/lisp.LVal.Format.
func (rt *Runtime) WriteString(v Value) string {
	var b strings.Builder
	rt.format(&b, v, true, map[Handle]bool{})
	return b.String()
}

// DisplayString renders v the way `display` does: strings print without
// quotes, chars print as themselves.
func (rt *Runtime) DisplayString(v Value) string {
	var b strings.Builder
	rt.format(&b, v, false, map[Handle]bool{})
	return b.String()
}

func (rt *Runtime) format(b *strings.Builder, v Value, write bool, seen map[Handle]bool) {
	switch v.Tag {
	case TUnspecified:
		b.WriteString("#<unspecified>")
	case TNil:
		b.WriteString("()")
	case TEOF:
		b.WriteString("#<eof>")
	case TBool:
		if IsTruthy(v) {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case TChar:
		if write {
			b.WriteString(writeChar(GetChar(v)))
		} else {
			b.WriteRune(GetChar(v))
		}
	case TInt:
		b.WriteString(strconv.FormatInt(GetInt(v), 10))
	case TFloat:
		b.WriteString(formatFloat(GetFloat(v)))
	case TSymbol:
		b.WriteString(symbolName(GetSymbol(v)))
	case TString:
		s := rt.StringGo(v)
		if write {
			b.WriteString(writeStringLiteral(s))
		} else {
			b.WriteString(s)
		}
	case TPair:
		rt.formatPair(b, v, write, seen)
	case TVector:
		h := heapHandle(v)
		if seen[h] {
			b.WriteString("#[...]")
			return
		}
		seen[h] = true
		b.WriteString("#(")
		items := rt.VectorSlice(v)
		for i, x := range items {
			if i > 0 {
				b.WriteByte(' ')
			}
			rt.format(b, x, write, seen)
		}
		b.WriteByte(')')
		delete(seen, h)
	case TBytevector:
		b.WriteString("#u8(")
		bs := rt.BytevectorBytes(v)
		for i, x := range bs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(int(x)))
		}
		b.WriteByte(')')
	case TPort:
		fmt.Fprintf(b, "#<port %s>", rt.port(v).name)
	case TClosure:
		fmt.Fprintf(b, "#<procedure%s>", closureNameSuffix(rt.closure(v)))
	case TPrimitive:
		fmt.Fprintf(b, "#<procedure %s>", rt.primitive(v).name)
	case TContinuation:
		b.WriteString("#<continuation>")
	case TPromise:
		b.WriteString("#<promise>")
	case TSyntacticClosure:
		b.WriteString("#<syntactic-closure>")
	case TFrame:
		b.WriteString("#<frame>")
	case TCode:
		b.WriteString("#<code>")
	case TEnv:
		b.WriteString("#<environment>")
	case TValues:
		vals := rt.valuesSlice(v)
		for i, x := range vals {
			if i > 0 {
				b.WriteByte(' ')
			}
			rt.format(b, x, write, seen)
		}
	case TError:
		fmt.Fprintf(b, "#<error %s>", rt.FormatError(v))
	case TTransformer:
		b.WriteString("#<macro-transformer>")
	default:
		b.WriteString("#<unknown>")
	}
}

func closureNameSuffix(c *closureObj) string {
	if c.code != nil && c.code.Name != "" {
		return " " + c.code.Name
	}
	return ""
}

func (rt *Runtime) formatPair(b *strings.Builder, v Value, write bool, seen map[Handle]bool) {
	if quoteAbbrev, ok := rt.quoteAbbrevForm(v); ok {
		b.WriteString(quoteAbbrev)
		rt.format(b, rt.Car(rt.Cdr(v)), write, seen)
		return
	}
	h := heapHandle(v)
	if seen[h] {
		b.WriteString("#[...]")
		return
	}
	seen[h] = true
	b.WriteByte('(')
	cur := v
	first := true
	for {
		if cur.Tag == TPair {
			ch := heapHandle(cur)
			if !first && seen[ch] {
				b.WriteString(" . #[...]")
				break
			}
			if !first {
				b.WriteByte(' ')
			}
			rt.format(b, rt.Car(cur), write, seen)
			first = false
			cur = rt.Cdr(cur)
			continue
		}
		if cur.Tag == TNil {
			break
		}
		b.WriteString(" . ")
		rt.format(b, cur, write, seen)
		break
	}
	b.WriteByte(')')
	delete(seen, h)
}

// quoteAbbrevForm recognizes (quote x), (quasiquote x), (unquote x) and
// (unquote-splicing x) two-element lists for printing as '/`/,/,@ .
func (rt *Runtime) quoteAbbrevForm(v Value) (string, bool) {
	if rt.Cdr(v).Tag != TPair || rt.Cdr(rt.Cdr(v)).Tag != TNil {
		return "", false
	}
	head := rt.Car(v)
	if head.Tag != TSymbol {
		return "", false
	}
	switch symbolName(GetSymbol(head)) {
	case "quote":
		return "'", true
	case "quasiquote":
		return "`", true
	case "unquote":
		return ",", true
	case "unquote-splicing":
		return ",@", true
	}
	return "", false
}

func writeChar(r rune) string {
	switch r {
	case ' ':
		return "#\\space"
	case '\n':
		return "#\\newline"
	case '\t':
		return "#\\tab"
	case '\r':
		return "#\\return"
	case 0:
		return "#\\null"
	}
	return "#\\" + string(r)
}

func writeStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

// Eqv implements eqv?: eq? for immediates and heap identity for everything
// else, with numbers additionally comparing equal only when their
// exactness matches (lumen has no exactness tags beyond int/float, so this
// reduces to same-tag same-bits, which Equals already gives us).
func Eqv(a, b Value) bool { return Equals(a, b) }

// EqualValues implements equal?: structural equality for pairs, vectors
// and strings; eqv? for everything else.
func (rt *Runtime) EqualValues(a, b Value) bool {
	return rt.equalRec(a, b, map[[2]Handle]bool{})
}

func (rt *Runtime) equalRec(a, b Value, seen map[[2]Handle]bool) bool {
	if Equals(a, b) {
		return true
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TString:
		return rt.StringGo(a) == rt.StringGo(b)
	case TPair:
		key := [2]Handle{heapHandle(a), heapHandle(b)}
		if seen[key] {
			return true
		}
		seen[key] = true
		return rt.equalRec(rt.Car(a), rt.Car(b), seen) && rt.equalRec(rt.Cdr(a), rt.Cdr(b), seen)
	case TVector:
		va, vb := rt.VectorSlice(a), rt.VectorSlice(b)
		if len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !rt.equalRec(va[i], vb[i], seen) {
				return false
			}
		}
		return true
	case TBytevector:
		ba, bb := rt.BytevectorBytes(a), rt.BytevectorBytes(b)
		if len(ba) != len(bb) {
			return false
		}
		for i := range ba {
			if ba[i] != bb[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
