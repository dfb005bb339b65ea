package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperlisp/lumen/lisp"
	"github.com/hyperlisp/lumen/reader"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd mirrors elps's own run command shape: by default its arguments
// name files to load, or with -e are the source text itself.
var runCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Run lumen source files",
	Long:  `Run lumen source provided via files or, with -e, the command line itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sources, names, err := runReadSources(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		// One Session across every argument, not one per file: a
		// continuation captured while running an earlier file should
		// stay invocable while running a later one, the same reach a
		// single file's own top-level forms already get from sharing
		// one CompileTopLevel/RunCode call.
		sess := rt.NewSession()
		for i, src := range sources {
			if !runOne(rt, sess, names[i], src) {
				os.Exit(1)
			}
		}
	},
}

func runReadSources(args []string) (sources []*strings.Reader, names []string, err error) {
	if runExpression {
		for i, a := range args {
			sources = append(sources, strings.NewReader(a))
			names = append(names, fmt.Sprintf("<arg %d>", i))
		}
		return sources, names, nil
	}
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, strings.NewReader(string(b)))
		names = append(names, path)
	}
	return sources, names, nil
}

// runOne parses, compiles and runs one source chunk, returning false and
// printing a diagnostic if any stage fails.
func runOne(rt *lisp.Runtime, sess *lisp.Session, name string, src *strings.Reader) bool {
	forms, err := reader.New().Read(rt, name, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	code, errv := rt.CompileTopLevel(forms)
	if lisp.IsError(errv) {
		fmt.Fprintln(os.Stderr, rt.FormatError(errv))
		return false
	}
	result := runProgram(rt, sess, code)
	if lisp.IsError(result) {
		fmt.Fprintln(os.Stderr, rt.FormatError(result))
		return false
	}
	if runPrint && result.Tag != lisp.TUnspecified {
		fmt.Println(rt.WriteString(result))
	}
	return true
}

// runProgram evaluates code, converting an escaped continuation invocation
// into a catchable error rather than letting it crash the process (mirrors
// repl.runTopLevel's recovery).
func runProgram(rt *lisp.Runtime, sess *lisp.Session, code *lisp.CodeBlock) (result lisp.Value) {
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

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"interpret arguments as lumen source instead of file paths")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"print the result of the last top-level form")
}
