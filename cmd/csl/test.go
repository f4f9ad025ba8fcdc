package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/csl-lang/csl/internal/report"
	"github.com/csl-lang/csl/lexer"
	"github.com/csl-lang/csl/parser"
)

// runTest ports Csl.cpp's --test branch: lex and parse a file, print its
// errors and warnings to stderr in spec.md §7's "Error/Warning (line L,
// col C): message" form, and exit 1 if any diagnostic was produced.
//
// The original takes exactly one <path>. Here <file> may be a glob
// pattern as well as a plain path, so a single invocation can check a
// whole tree of schema files; running it against several files sets
// retVal 1 if any one of them has a diagnostic, matching the
// one-file-at-a-time behavior when only one file matches.
func runTest(args []string) int {
	if len(args) == 0 {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, "invalid arguments: --test requires at least one file")
		return 2
	}

	var paths []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			printInfo(os.Stderr)
			fmt.Fprintf(os.Stderr, "invalid pattern %q: %v\n", pattern, err)
			return 2
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		paths = append(paths, matches...)
	}

	printInfo(os.Stdout)

	retVal := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "file %s is not valid\n", path)
			return 1
		}

		_, lexReport := lexer.Lex(string(data), false)
		_, parseReport := parser.Parse(string(data))

		var full report.Report
		full.Merge(lexReport)
		full.Merge(parseReport)

		if errs := full.Errors(); len(errs) > 0 {
			fmt.Fprintf(os.Stderr, "\nErrors in %s:\n", path)
			for _, d := range errs {
				fmt.Fprintln(os.Stderr, report.Format(d))
			}
		}
		if warns := full.Warnings(); len(warns) > 0 {
			fmt.Fprintf(os.Stderr, "\nWarnings in %s:\n", path)
			for _, d := range warns {
				fmt.Fprintln(os.Stderr, report.Format(d))
			}
		}
		if len(full.Errors())+len(full.Warnings()) > 0 {
			retVal = 1
		}
	}

	return retVal
}
