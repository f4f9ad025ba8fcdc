package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/csl-lang/csl/docgen"
	"github.com/csl-lang/csl/parser"
)

// maxConcurrentWrites bounds how many page files runHTMLDoc writes to
// disk at once, so a glob matching thousands of schemas doesn't open
// thousands of file descriptors at the same time.
const maxConcurrentWrites = 8

// runHTMLDoc ports Csl.cpp's --htmldoc branch, generalized from a single
// input file to a glob of them: every file the pattern matches gets its
// own parse and its own set of generated pages, all written under
// <outdir>. The original writes one file's pages directly into <outdir>;
// with multiple matched files here, each file's pages are namespaced
// under a subdirectory named after the input file to avoid page-name
// collisions between schemas defined in different files.
func runHTMLDoc(args []string) int {
	fs := newFlagSet("htmldoc")
	configPath := fs.String("config", "", "path to a workspace config YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 2 {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, "invalid arguments: --htmldoc requires <glob> <outdir>")
		return 2
	}
	pattern, outDir := rest[0], rest[1]

	cfg, err := loadWorkspaceConfig(*configPath)
	if err != nil {
		printInfo(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		printInfo(os.Stderr)
		fmt.Fprintf(os.Stderr, "invalid pattern %q: %v\n", pattern, err)
		return 2
	}
	if len(matches) == 0 {
		printInfo(os.Stderr)
		fmt.Fprintf(os.Stderr, "pattern %q matched no files\n", pattern)
		return 1
	}

	printInfo(os.Stdout)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	type writeJob struct {
		path string
		data string
	}
	var jobs []writeJob
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "file %s is not valid\n", path)
			return 1
		}
		f, rep := parser.Parse(string(data))
		if rep.HasErrors() {
			fmt.Fprintf(os.Stderr, "\nErrors in %s:\n", path)
			for _, d := range rep.Errors() {
				fmt.Fprintln(os.Stderr, d.Message())
			}
			return 1
		}

		pages := docgen.Generate(f, docgen.Theme(cfg.HTMLTheme))
		dest := outDir
		if len(matches) > 1 {
			dest = filepath.Join(outDir, baseNameNoExt(path))
			if err := os.MkdirAll(dest, 0o755); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		for _, pg := range pages {
			jobs = append(jobs, writeJob{path: filepath.Join(dest, pg.FileName), data: pg.HTML})
		}
		total += len(pages)
	}

	grp := new(errgroup.Group)
	grp.SetLimit(maxConcurrentWrites)
	for _, j := range jobs {
		j := j
		grp.Go(func() error {
			return os.WriteFile(j.path, []byte(j.data), 0o644)
		})
	}
	if err := grp.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("generated %d file(s) in %s\n", total, outDir)
	return 0
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
