// Package repl implements lumen's interactive read-compile-run loop,
// grounded on elps's repl/repl.go: a readline-backed prompt that
// re-prompts with an indented continuation line while a datum is still
// incomplete, and otherwise evaluates each top-level form as soon as it
// parses.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/hyperlisp/lumen/lisp"
	"github.com/hyperlisp/lumen/reader"
)

const prompt = "lumen> "

// Run starts the REPL against rt, which must already have a Reader
// installed (lisp.WithReader) and the prelude booted. Run returns when
// stdin closes or readline reports an error; an interrupt discards any
// partly entered datum and keeps the loop running.
func Run(rt *lisp.Runtime) error {
	rl, err := readline.New(prompt)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	contPrompt := strings.Repeat(" ", len(prompt)-2) + "..."

	// One Session for the whole REPL run, not one per entry: a whole
	// file's top-level forms share a single CompileTopLevel/RunCode call
	// (cmd/lumen's run command), so a continuation captured by one form
	// stays invocable by a later one in the same file. A fresh
	// CompileTopLevel/RunCode per entered form would give the identical
	// program pasted into the REPL a different, narrower continuation
	// reach; Session closes that gap by keeping every entry's evaluation
	// within the same persistent vmRun generation (lisp.Session).
	sess := rt.NewSession()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buf.Len() == 0 {
				continue
			}
			buf.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if strings.TrimSpace(buf.String()) == "" {
			buf.Reset()
			continue
		}

		forms, err := reader.New().Read(rt, "repl", strings.NewReader(buf.String()))
		if err != nil {
			if errors.Is(err, reader.ErrIncompleteInput) {
				rl.SetPrompt(contPrompt)
				continue
			}
			fmt.Fprintln(os.Stderr, err)
			buf.Reset()
			rl.SetPrompt(prompt)
			continue
		}

		buf.Reset()
		rl.SetPrompt(prompt)
		evalAndPrint(rt, sess, forms)
	}
}

func evalAndPrint(rt *lisp.Runtime, sess *lisp.Session, forms []lisp.Value) {
	for _, form := range forms {
		code, errv := rt.CompileTopLevel([]lisp.Value{form})
		if lisp.IsError(errv) {
			fmt.Println(rt.FormatError(errv))
			continue
		}
		result := runTopLevel(rt, sess, code)
		if lisp.IsError(result) {
			fmt.Println(rt.FormatError(result))
			continue
		}
		printResult(rt, result)
	}
}

// runTopLevel evaluates code within sess, converting an escaped
// continuation invocation — one that outlived every Session entry still
// on the Go call stack — into a catchable error instead of letting the
// REPL crash (spec.md's catch-and-continue contract for the top-level
// loop).
func runTopLevel(rt *lisp.Runtime, sess *lisp.Session, code *lisp.CodeBlock) (result lisp.Value) {
	defer func() {
		if r := recover(); r != nil {
			if errv, ok := rt.RecoverEscapedContinuation(r); ok {
				result = errv
				return
			}
			panic(r)
		}
	}()
	return rt.RunInSession(sess, code)
}

// printResult echoes result the way elps's own REPL does for a plain
// value, plus a "; "-prefixed line per component for a (values ...)
// result (original_source's repl.rs behavior, carried per SPEC_FULL).
func printResult(rt *lisp.Runtime, result lisp.Value) {
	if lisp.IsValues(result) {
		for _, v := range rt.ValuesSlice(result) {
			fmt.Printf("; %s\n", rt.WriteString(v))
		}
		return
	}
	if result.Tag == lisp.TUnspecified {
		return
	}
	fmt.Println(rt.WriteString(result))
}
