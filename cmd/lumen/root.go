package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperlisp/lumen/lisp"
	"github.com/hyperlisp/lumen/reader"
	"github.com/hyperlisp/lumen/repl"
)

// rootCmd's Run implements spec.md §6's two-shape contract directly: (a)
// invoked with no path starts the interactive REPL, (b) invoked with one
// or more paths evaluates each in turn and exits 0 on success or non-zero
// on the first top-level error, without needing the "run" subcommand at
// all. "lumen run FILE..." (run.go) stays as an explicit alternative for
// -e/expression-argument invocations, but a bare "lumen FILE" must not
// silently fall through to the REPL and drop the file on the floor.
var rootCmd = &cobra.Command{
	Use:   "lumen [FILE...]",
	Short: "lumen is an interpreter for a lexically scoped Lisp dialect",
	Long: `lumen reads, compiles and runs programs written in a small
R5RS-derived Lisp dialect with hygienic macros, proper tail calls and
first-class continuations.

Run lumen with no arguments to start an interactive REPL, or
"lumen FILE..." (equivalently "lumen run FILE...") to evaluate one or
more files.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := newRuntime()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if len(args) == 0 {
			if err := repl.Run(rt); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
		sources, names, err := runReadSources(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sess := rt.NewSession()
		for i, src := range sources {
			if !runOne(rt, sess, names[i], src) {
				os.Exit(1)
			}
		}
	},
}

// Execute runs the root command, exiting the process on a cobra-level
// error (bad flags, unknown subcommand).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRuntime builds a booted Runtime configured from the environment: the
// LUMEN_LOG variable sets internal VM/GC diagnostic verbosity the way
// elps threads a similar knob through its own Config chain.
func newRuntime() (*lisp.Runtime, error) {
	level := 0
	if v := os.Getenv("LUMEN_LOG"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LUMEN_LOG: %w", err)
		}
		level = n
	}
	rt, err := lisp.NewBootedRuntime(
		lisp.WithReader(reader.New()),
		lisp.WithLogLevel(level),
	)
	if err != nil {
		return nil, fmt.Errorf("lumen: %w", err)
	}
	return rt, nil
}
