package lisp_test

import (
	"testing"

	"github.com/hyperlisp/lumen/lumentest"
)

func TestMacroExpansion(t *testing.T) {
	tests := lumentest.TestSuite{
		{"syntax-rules basics", lumentest.TestSequence{
			{`(define-syntax my-if
               (syntax-rules ()
                 ((my-if c t e) (cond (c t) (else e)))))`, "#<unspecified>"},
			{`(my-if #t 'yes 'no)`, "yes"},
			{`(my-if #f 'yes 'no)`, "no"},
		}},
		{"syntax-rules ellipsis", lumentest.TestSequence{
			{`(define-syntax my-list
               (syntax-rules ()
                 ((my-list x ...) (list x ...))))`, "#<unspecified>"},
			{`(my-list 1 2 3)`, "(1 2 3)"},
			{`(my-list)`, "()"},
		}},
		{"hygiene: macro-introduced bindings do not capture use-site names", lumentest.TestSequence{
			{`(define-syntax my-or
               (syntax-rules ()
                 ((my-or) #f)
                 ((my-or e) e)
                 ((my-or e1 e2 ...) (let ((t e1)) (if t t (my-or e2 ...))))))`, "#<unspecified>"},
			// A use-site binding named "t" must not be shadowed by my-or's
			// own internal "t" temporary: this is the classic hygiene test
			// for an or-like macro built from an unhygienic let.
			{`(let ((t 'use-site)) (my-or #f t))`, "use-site"},
		}},
		{"hygiene: free identifiers in the macro body resolve in the definition environment", lumentest.TestSequence{
			{`(define-syntax my-when
               (syntax-rules ()
                 ((my-when c body ...) (if c (begin body ...) #f))))`, "#<unspecified>"},
			// Shadowing "if" at the use site must not affect my-when's
			// expansion, since "if" there is a reference from the macro's
			// definition environment.
			{`(let ((if (lambda (a b c) 'shadowed)))
                (my-when #t 'via-real-if))`, "via-real-if"},
		}},
		{"sc-macro-transformer wraps its result over the macro's definition environment", lumentest.TestSequence{
			{`(define sct-x 'outer)`, "#<unspecified>"},
			// sc-macro-transformer's lambda is itself evaluated against the
			// global environment, so the "x" it returns must see the
			// top-level sct-x binding, not the let's shadowing one, even
			// though the let-syntax lexically appears inside the let.
			{`(let ((sct-x 'inner))
                (let-syntax ((m (sc-macro-transformer (lambda (expr use-env) 'sct-x))))
                  (m)))`, "outer"},
		}},
		{"rsc-macro-transformer's result is not hygienically wrapped", lumentest.TestSequence{
			{`(define-syntax my-rsc-when
               (rsc-macro-transformer
                (lambda (expr mac-env)
                  (list 'if (car (cdr expr)) (cons 'begin (cdr (cdr expr))) (list 'quote 'no-branch)))))`, "#<unspecified>"},
			// Unlike sc-macro-transformer/syntax-rules, rsc-macro-transformer
			// hands back a bare, unwrapped "if" symbol: since it carries no
			// syntactic closure over the macro's definition environment, it
			// resolves at the use site by ordinary lexical scoping, so a
			// use-site binding named "if" shadows it just like any other
			// unhygienic macro built from raw list construction would.
			{`(let ((if (lambda (a b c) 'shadowed-if-used)))
                (my-rsc-when #t 'real-branch))`, "shadowed-if-used"},
		}},
		{"rsc-macro-transformer's callback receives the macro's own definition environment", lumentest.TestSequence{
			{`(define-syntax rsc-envcheck
               (rsc-macro-transformer
                (lambda (expr mac-env)
                  (list 'quote (identifier=? mac-env 'rsc-envcheck-x (the-environment) 'rsc-envcheck-x)))))`, "#<unspecified>"},
			// mac-env must be the macro's own (global) definition
			// environment, not the use site's — which here shadows the same
			// name and so would make identifier=? false if the wrong
			// environment were passed.
			{`(let ((rsc-envcheck-x 'shadow)) (rsc-envcheck))`, "#t"},
		}},
		{"nested ellipsis", lumentest.TestSequence{
			{`(define-syntax my-let*
               (syntax-rules ()
                 ((my-let* () body ...) (let () body ...))
                 ((my-let* ((n v) rest ...) body ...)
                  (let ((n v)) (my-let* (rest ...) body ...)))))`, "#<unspecified>"},
			{`(my-let* ((a 1) (b (+ a 1)) (c (+ b 1))) (list a b c))`, "(1 2 3)"},
		}},
	}
	lumentest.RunTestSuite(t, tests)
}
