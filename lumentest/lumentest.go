// Package lumentest provides a small Go test harness for lumen-level
// behavior, grounded on elps's elpstest package: TestSequence/TestSuite
// drive parse-eval-compare checks against fresh interpreters, and Runner
// loads a whole fixture file and runs each deftest form it registers as
// its own testing.T subtest, the way elpstest.Runner pairs env.Load with
// libtesting.EnvTestSuite.
package lumentest

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperlisp/lumen/lisp"
	"github.com/hyperlisp/lumen/reader"
	"github.com/hyperlisp/lumen/symbol"
)

// NewEnv builds a freshly booted Runtime the way every table-driven check
// and fixture run needs: isolated heap, isolated global table, prelude
// loaded. Each call is independent, matching elpstest's per-test
// lisp.NewEnv/InitializeUserEnv pairing.
func NewEnv(t testing.TB) *lisp.Runtime {
	t.Helper()
	rt, err := lisp.NewBootedRuntime(lisp.WithReader(reader.New()))
	require.NoError(t, err, "boot runtime")
	return rt
}

// eval reads and runs every top-level form in src against rt within sess,
// returning the final form's result. A compile-time failure (an unbound
// variable, say) and a run-time failure both come back as an ordinary
// TError Value, exactly like a successful result — callers compare its
// printed form the same way, matching elps's own LError.String()
// comparison convention. Only a Go-level parse error (malformed source,
// not a lumen program's own condition) fails the test outright.
//
// eval runs within sess rather than a fresh RunCode call each time so
// that a TestSequence step capturing a continuation (call/cc) stays
// invocable by a later step in the same sequence, matching the reach a
// whole file's forms get from a single CompileTopLevel/RunCode call — see
// lisp.Session.
func eval(t testing.TB, rt *lisp.Runtime, sess *lisp.Session, name, src string) lisp.Value {
	t.Helper()
	forms, err := reader.New().Read(rt, name, strings.NewReader(src))
	require.NoError(t, err, "parse %s", name)
	code, errv := rt.CompileTopLevel(forms)
	if lisp.IsError(errv) {
		return errv
	}
	return rt.RunInSession(sess, code)
}

// TestSequence is a sequence of expressions evaluated one after another
// against a single Runtime, each checked against its expected printed
// (write-style) representation. Earlier expressions in the sequence can
// establish bindings later ones depend on, mirroring elps's own
// TestSequence.
type TestSequence []struct {
	Expr   string
	Result string
}

// TestSuite is a set of named TestSequences, each run on its own isolated
// Runtime.
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs every TestSequence in tests as its own subtest.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			rt := NewEnv(t)
			sess := rt.NewSession()
			for i, step := range test.TestSequence {
				result := eval(t, rt, sess, test.Name, step.Expr)
				assert.Equal(t, step.Result, rt.WriteString(result),
					"expr %d %q", i, step.Expr)
			}
		})
	}
}

// Runner loads whole fixture files and drives the deftest forms they
// register.
type Runner struct{}

// RunTestFile loads path once to discover the deftest names it registers,
// then reloads the file once per name and runs only that name's thunk, so
// a failing test's panic/error can't leave state that corrupts a sibling
// test — the isolation elpstest.Runner gets from re-running env.Load per
// subtest.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("unable to read test file: %v", err)
		return
	}

	var names []string
	ok := t.Run("$load", func(t *testing.T) {
		rt := NewEnv(t)
		sess := rt.NewSession()
		result := eval(t, rt, sess, path, string(source))
		if lisp.IsError(result) {
			t.Error(rt.FormatError(result))
			return
		}
		names = testNames(t, rt, sess, path)
	})
	if !ok {
		return
	}

	for _, name := range names {
		name := name
		t.Run(name, func(t *testing.T) {
			rt := NewEnv(t)
			sess := rt.NewSession()
			result := eval(t, rt, sess, path, string(source))
			if lisp.IsError(result) {
				t.Error(rt.FormatError(result))
				return
			}
			runResult := eval(t, rt, sess, path, fmt.Sprintf("((%%test-thunk '%s))", name))
			if lisp.IsError(runResult) {
				t.Errorf("%s: %s", name, rt.FormatError(runResult))
			}
		})
	}
}

// testNames evaluates (%test-names) against rt and unpacks the resulting
// list of symbols into their printed names.
func testNames(t testing.TB, rt *lisp.Runtime, sess *lisp.Session, path string) []string {
	t.Helper()
	result := eval(t, rt, sess, path, "(%test-names)")
	if lisp.IsError(result) {
		t.Errorf("unable to locate test suite: %s", rt.FormatError(result))
		return nil
	}
	items, ok := rt.ListToSlice(result)
	if !ok {
		t.Errorf("%%test-names did not return a proper list")
		return nil
	}
	names := make([]string, len(items))
	for i, v := range items {
		name, ok := symbol.Name(lisp.GetSymbol(v))
		if !ok {
			t.Errorf("unknown symbol in test name list")
			return nil
		}
		names[i] = name
	}
	return names
}
