package lisp_test

import (
	"testing"

	"github.com/hyperlisp/lumen/lumentest"
)

func TestEvalBasics(t *testing.T) {
	tests := lumentest.TestSuite{
		{"self-evaluating", lumentest.TestSequence{
			{"3", "3"},
			{"3.5", "3.5"},
			{"#t", "#t"},
			{"#f", "#f"},
			{"\"hi\"", `"hi"`},
			{"'a", "a"},
			{"'(1 2 3)", "(1 2 3)"},
			{"'()", "()"},
		}},
		{"arithmetic", lumentest.TestSequence{
			{"(+ 1 2 3)", "6"},
			{"(- 10 1 2)", "7"},
			{"(* 2 3 4)", "24"},
			{"(/ 10 2)", "5"},
			{"(< 1 2 3)", "#t"},
			{"(< 1 3 2)", "#f"},
			{"(quotient 7 2)", "3"},
			{"(remainder 7 2)", "1"},
			{"(modulo -7 2)", "1"},
		}},
		{"define and lambda", lumentest.TestSequence{
			{"(define (square x) (* x x))", "#<unspecified>"},
			{"(square 5)", "25"},
			{"(define add1 (lambda (x) (+ x 1)))", "#<unspecified>"},
			{"(add1 41)", "42"},
		}},
		{"let forms", lumentest.TestSequence{
			{"(let ((x 1) (y 2)) (+ x y))", "3"},
			{"(let* ((x 1) (y (+ x 1))) (+ x y))", "3"},
			{"(letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1))))) (odd? (lambda (n) (if (= n 0) #f (even? (- n 1)))))) (even? 10))", "#t"},
		}},
		{"named let and tail calls", lumentest.TestSequence{
			{`(let loop ((n 100000) (acc 0)) (if (= n 0) acc (loop (- n 1) (+ acc 1))))`, "100000"},
		}},
		{"cond and case", lumentest.TestSequence{
			{"(cond ((= 1 2) 'no) ((= 1 1) 'yes) (else 'never))", "yes"},
			{"(case 2 ((1) 'one) ((2 3) 'two-or-three) (else 'other))", "two-or-three"},
		}},
		{"multiple values", lumentest.TestSequence{
			{"(call-with-values (lambda () (values 1 2)) +)", "3"},
			{"(let-values (((a b) (values 1 2))) (+ a b))", "3"},
		}},
		{"dynamic-wind and call/cc", lumentest.TestSequence{
			{`(let ((trace '()))
                       (define (note x) (set! trace (cons x trace)))
                       (dynamic-wind
                        (lambda () (note 'before))
                        (lambda () (note 'during))
                        (lambda () (note 'after)))
                       (reverse trace))`, "(before during after)"},
			{"(+ 1 (call/cc (lambda (k) (k 10) 999)))", "11"},
		}},
		{"continuation captured in one top-level form is invocable from a later one", lumentest.TestSequence{
			{"(define saved-k #f)", "#<unspecified>"},
			{"(+ 1 (call/cc (lambda (k) (set! saved-k k) 1)))", "2"},
			{"(saved-k 41)", "42"},
		}},
		{"errors", lumentest.TestSequence{
			{"a-never-defined-symbol", "#<error unbound-error: unbound variable: a-never-defined-symbol>"},
			{`(car '())`, "#<error type-error: car: not a pair: ()>"},
		}},
	}
	lumentest.RunTestSuite(t, tests)
}
