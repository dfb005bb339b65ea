// Command lumen is lumen's CLI entrypoint: run with no arguments to start
// the interactive REPL, or `lumen run FILE...` to evaluate one or more
// files and exit. Grounded on elps's cmd/run.go (the run subcommand
// shape) and its implied root command, which the retrieval pack itself
// does not carry.
package main

func main() {
	Execute()
}
