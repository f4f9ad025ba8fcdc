// Command csl is the thin driver around the Config Schema Language
// core: a diagnostic-printing test mode, an HTML documentation
// generator, and a Language Server Protocol adapter over stdio.
//
// Grounded on original_source/impl/core/driver/{Csl.cpp,Test.cpp}: the
// same three modes, the same printInfo/printHelp banners, and the same
// exit code convention (0 clean, 1 diagnostics/runtime error, 2 bad
// arguments). Socket and named-pipe transports from Csl.cpp are not
// carried over — stdio is the only transport exercised by editors in
// practice and the others need platform-specific plumbing with no
// analogue anywhere in the retrieved pack.
package main

import (
	"fmt"
	"os"
)

const banner = "csl: A Config Schema Language Utility\n"

func printInfo(w *os.File) {
	fmt.Fprint(w, banner)
}

func printHelp(w *os.File, prog string) {
	fmt.Fprintf(w, "Usage:\n"+
		"  %s --test <file> [<file>...]\n"+
		"      Lex and parse each config schema file, printing diagnostics.\n"+
		"  %s --htmldoc [--config=<file.yaml>] <glob> <outdir>\n"+
		"      Generate HTML documentation for every file the glob pattern\n"+
		"      matches, writing one file per page into <outdir>.\n"+
		"  %s --langsvr --stdio [--config=<file.yaml>]\n"+
		"      Start a language server instance on standard IO.\n"+
		"  %s --help | -h\n"+
		"      Print this help message.\n",
		prog, prog, prog, prog)
}

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	prog := argv[0]
	args := argv[1:]

	if len(args) == 0 {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, "invalid arguments:", argv)
		printHelp(os.Stderr, prog)
		return 2
	}

	switch args[0] {
	case "--help", "-h":
		printInfo(os.Stdout)
		printHelp(os.Stdout, prog)
		return 0
	case "--test":
		return runTest(args[1:])
	case "--htmldoc":
		return runHTMLDoc(args[1:])
	case "--langsvr":
		return runLangServer(args[1:])
	default:
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, "invalid arguments:", argv)
		printHelp(os.Stderr, prog)
		return 2
	}
}
