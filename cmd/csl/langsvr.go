package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/csl-lang/csl/langsvr"
)

// newFlagSet builds a flag.FlagSet that reports parse errors itself
// (ContinueOnError) so callers can translate a bad flag into the
// "invalid arguments" exit code 2 convention instead of flag's default
// os.Exit(2) with its own message shape.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// runLangServer ports Csl.cpp's --langsvr --stdio branch. The original
// also supports --socket/--port/--pipe transports behind a STDIO_ONLY
// build flag; those need OS-specific socket/named-pipe plumbing with no
// analogue anywhere in the retrieved pack, so only stdio is offered here.
func runLangServer(args []string) int {
	fs := newFlagSet("langsvr")
	configPath := fs.String("config", "", "path to a workspace config YAML file")
	stdio := fs.Bool("stdio", false, "serve over standard input/output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !*stdio {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, "invalid arguments: --langsvr requires --stdio")
		return 2
	}

	cfg, err := loadWorkspaceConfig(*configPath)
	if err != nil {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	srv := langsvr.NewServer(os.Stdout)
	srv.SetDefaults(cfg.TraceValue, cfg.HTMLTheme)
	return srv.Run(os.Stdin)
}
