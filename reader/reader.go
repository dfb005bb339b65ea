package reader

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hyperlisp/lumen/lisp"
)

// ErrIncompleteInput marks a parse failure caused by the input ending
// before a datum was finished (an open paren, an open string, a
// dangling quote) rather than by malformed syntax. The REPL checks for
// this with errors.Is to decide whether to re-prompt for more text
// instead of reporting a hard error, mirroring the `complete bool`
// elps's own parser.Parse returns for the same purpose.
var ErrIncompleteInput = errors.New("incomplete datum")

// schemeReader implements lisp.Reader. It carries no state of its own:
// every Read/ReadOne call builds a fresh Parser bound to the *lisp.Runtime
// passed in for that call, mirroring elps's stateless
// parser/rdparser.reader.
type schemeReader struct{}

// New returns a lisp.Reader backed by this package's lexer and parser,
// for installing on a Runtime via lisp.WithReader.
func New() lisp.Reader {
	return &schemeReader{}
}

// Read implements lisp.Reader, parsing every top-level datum in r.
func (*schemeReader) Read(rt *lisp.Runtime, name string, r io.Reader) ([]lisp.Value, error) {
	p := newParser(rt, name, r)
	var forms []lisp.Value
	for {
		tok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return forms, nil
		}
		v, err := p.parseDatum(tok)
		if err != nil {
			return nil, err
		}
		forms = append(forms, v)
	}
}

// ReadOne implements lisp.Reader, parsing a single datum. Reading only
// as many runes as that one datum needs (see Lexer's doc comment) is
// what lets repeated calls against the same port each return the next
// datum rather than re-reading from the start.
func (*schemeReader) ReadOne(rt *lisp.Runtime, name string, r io.Reader) (lisp.Value, error) {
	p := newParser(rt, name, r)
	tok, err := p.nextToken()
	if err != nil {
		return lisp.Value{}, err
	}
	if tok.Type == EOF {
		return lisp.Value{}, io.EOF
	}
	v, err := p.parseDatum(tok)
	// Hand back the one rune of lookahead (the delimiter that ended an
	// atom) so the next call on the same reader still sees it.
	if rs, ok := r.(io.RuneScanner); ok && len(p.lex.pending) == 1 {
		if rs.UnreadRune() == nil {
			p.lex.pending = nil
		}
	}
	return v, err
}

// Parser is a single-token-lookahead recursive-descent parser: unlike
// elps's rdparser.Parser it does not eagerly prime a peek token in its
// constructor, since doing so would pull the first token of whatever
// follows the datum being parsed out of the stream before ReadOne
// returns, which is exactly the byte a subsequent ReadOne call on the
// same port needs to still be there.
type Parser struct {
	lex  *Lexer
	rt   *lisp.Runtime
	name string
}

func newParser(rt *lisp.Runtime, name string, r io.Reader) *Parser {
	return &Parser{lex: NewLexer(name, r), rt: rt, name: name}
}

// nextToken returns the next token that starts a datum, transparently
// discarding "#;"-commented data along the way.
func (p *Parser) nextToken() (*Token, error) {
	for {
		tok := p.lex.NextToken()
		if tok.Type == ERROR {
			if tok.Incomplete {
				return nil, fmt.Errorf("%w: %s:%d:%d: %s", ErrIncompleteInput, p.name, tok.Line, tok.Col, tok.Text)
			}
			return nil, p.errAt(tok, "%s", tok.Text)
		}
		if tok.Type != DATUM_COMMENT {
			return tok, nil
		}
		inner, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if inner.Type == EOF {
			return nil, p.incompleteAt(inner, "unexpected EOF after #;")
		}
		if _, err := p.parseDatum(inner); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseDatum(tok *Token) (lisp.Value, error) {
	switch tok.Type {
	case ATOM:
		return p.parseAtom(tok.Text), nil
	case STRING:
		return p.rt.NewString(tok.Text), nil
	case CHAR:
		return lisp.Char([]rune(tok.Text)[0]), nil
	case BOOL:
		return lisp.Bool(tok.Text == "t"), nil
	case LPAREN:
		return p.parseList()
	case VECTOR_OPEN:
		return p.parseVector()
	case BYTEVECTOR_OPEN:
		return p.parseBytevector()
	case QUOTE:
		return p.parseAbbrev("quote")
	case QUASIQUOTE:
		return p.parseAbbrev("quasiquote")
	case UNQUOTE:
		return p.parseAbbrev("unquote")
	case UNQUOTE_SPLICE:
		return p.parseAbbrev("unquote-splicing")
	case RPAREN:
		return lisp.Value{}, p.errAt(tok, "unexpected )")
	case DOT:
		return lisp.Value{}, p.errAt(tok, "unexpected .")
	case EOF:
		return lisp.Value{}, p.incompleteAt(tok, "unexpected EOF")
	default:
		return lisp.Value{}, p.errAt(tok, "unexpected token %s", tok)
	}
}

func (p *Parser) parseAtom(text string) lisp.Value {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return lisp.Int(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return lisp.Float(f)
	}
	return lisp.Symbol(p.rt.Symbols.Intern(text))
}

func (p *Parser) parseAbbrev(keyword string) (lisp.Value, error) {
	tok, err := p.nextToken()
	if err != nil {
		return lisp.Value{}, err
	}
	if tok.Type == EOF {
		return lisp.Value{}, p.incompleteAt(tok, "unexpected EOF after %s", keyword)
	}
	v, err := p.parseDatum(tok)
	if err != nil {
		return lisp.Value{}, err
	}
	return p.rt.List(lisp.Symbol(p.rt.Symbols.Intern(keyword)), v), nil
}

// parseList assumes the opening "(" has already been consumed by the
// caller.
func (p *Parser) parseList() (lisp.Value, error) {
	var items []lisp.Value
	tail := lisp.Nil()
	for {
		tok, err := p.nextToken()
		if err != nil {
			return lisp.Value{}, err
		}
		switch tok.Type {
		case RPAREN:
			return p.buildList(items, tail), nil
		case EOF:
			return lisp.Value{}, p.incompleteAt(tok, "unexpected EOF, unmatched (")
		case DOT:
			tailTok, err := p.nextToken()
			if err != nil {
				return lisp.Value{}, err
			}
			if tailTok.Type == EOF {
				return lisp.Value{}, p.incompleteAt(tailTok, "unexpected EOF after .")
			}
			tailVal, err := p.parseDatum(tailTok)
			if err != nil {
				return lisp.Value{}, err
			}
			tail = tailVal
			closeTok, err := p.nextToken()
			if err != nil {
				return lisp.Value{}, err
			}
			if closeTok.Type != RPAREN {
				return lisp.Value{}, p.errAt(closeTok, "expected ) after dotted tail, got %s", closeTok)
			}
			return p.buildList(items, tail), nil
		default:
			v, err := p.parseDatum(tok)
			if err != nil {
				return lisp.Value{}, err
			}
			items = append(items, v)
		}
	}
}

func (p *Parser) buildList(items []lisp.Value, tail lisp.Value) lisp.Value {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = p.rt.Cons(items[i], result)
	}
	return result
}

// parseVector assumes the opening "#(" has already been consumed.
func (p *Parser) parseVector() (lisp.Value, error) {
	var items []lisp.Value
	for {
		tok, err := p.nextToken()
		if err != nil {
			return lisp.Value{}, err
		}
		if tok.Type == RPAREN {
			return p.rt.NewVector(items), nil
		}
		if tok.Type == EOF {
			return lisp.Value{}, p.incompleteAt(tok, "unexpected EOF, unmatched #(")
		}
		v, err := p.parseDatum(tok)
		if err != nil {
			return lisp.Value{}, err
		}
		items = append(items, v)
	}
}

// parseBytevector assumes the opening "#u8(" has already been consumed.
func (p *Parser) parseBytevector() (lisp.Value, error) {
	var bs []byte
	for {
		tok, err := p.nextToken()
		if err != nil {
			return lisp.Value{}, err
		}
		if tok.Type == RPAREN {
			return p.rt.NewBytevector(bs), nil
		}
		if tok.Type == EOF {
			return lisp.Value{}, p.incompleteAt(tok, "unexpected EOF, unmatched #u8(")
		}
		v, err := p.parseDatum(tok)
		if err != nil {
			return lisp.Value{}, err
		}
		if v.Tag != lisp.TInt {
			return lisp.Value{}, p.errAt(tok, "bytevector elements must be exact integers in [0, 255]")
		}
		n := lisp.GetInt(v)
		if n < 0 || n > 255 {
			return lisp.Value{}, p.errAt(tok, "bytevector element %d out of byte range", n)
		}
		bs = append(bs, byte(n))
	}
}

func (p *Parser) errAt(tok *Token, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", p.name, tok.Line, tok.Col, fmt.Sprintf(format, args...))
}

// incompleteAt reports a parse failure caused by reaching EOF with a
// datum still open, wrapping ErrIncompleteInput for the REPL.
func (p *Parser) incompleteAt(tok *Token, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s:%d:%d: %s", ErrIncompleteInput, p.name, tok.Line, tok.Col, fmt.Sprintf(format, args...))
}
