package lisp_test

import (
	"testing"

	"github.com/hyperlisp/lumen/lumentest"
)

// TestControlFixture drives control_test.scm's deftest registry through
// lumentest.Runner, the fixture-file idiom elps's own libstring_test.go
// exercises against string_test.lisp: each deftest name becomes its own
// subtest, reloading the fixture into a fresh Runtime so no test's
// mutation of global state can leak into another.
func TestControlFixture(t *testing.T) {
	r := &lumentest.Runner{}
	r.RunTestFile(t, "control_test.scm")
}
