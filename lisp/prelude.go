package lisp

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prelude.scm
var preludeSource string

// Boot loads the standard derived-syntax and library-procedure prelude
// into the Runtime's global environment: and/or/when/unless/let family/
// cond/case/do/delay, plus the small set of list procedures (filter,
// fold-left, fold-right, any, every, ...) that don't need VM support to
// express. Mirrors elps's lisplib.LoadLibrary entrypoint, except the
// library is lumen source compiled through the same reader/compiler/VM
// pipeline user code goes through, rather than a set of Go-native
// LoadPackage functions — lumen's derived forms are ordinary hygienic
// macros, so there is no separate native special-form path for them to
// live in (see DESIGN.md's Open Question on this).
//
// Boot requires a Reader to have been installed via WithReader; a Runtime
// built without one can still compile and run pre-parsed code, but cannot
// Boot.
func (rt *Runtime) Boot() error {
	if rt.reader == nil {
		return fmt.Errorf("lisp: cannot boot without a Reader (see WithReader)")
	}
	forms, err := rt.reader.Read(rt, "prelude.scm", strings.NewReader(preludeSource))
	if err != nil {
		return fmt.Errorf("lisp: parsing prelude: %w", err)
	}
	code, errv := rt.CompileTopLevel(forms)
	if IsError(errv) {
		return fmt.Errorf("lisp: compiling prelude: %s", rt.FormatError(errv))
	}
	if result := rt.RunCode(code, nil); IsError(result) {
		return fmt.Errorf("lisp: running prelude: %s", rt.FormatError(result))
	}
	return nil
}
