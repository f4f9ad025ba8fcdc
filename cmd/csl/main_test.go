package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects os.Stdout/os.Stderr for the duration of fn and
// returns what was written to each.
func capture(t *testing.T, fn func() int) (stdout, stderr string, code int) {
	t.Helper()

	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	savedOut, savedErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	defer func() { os.Stdout, os.Stderr = savedOut, savedErr }()

	code = fn()

	outW.Close()
	errW.Close()
	outBytes, _ := io.ReadAll(outR)
	errBytes, _ := io.ReadAll(errR)
	return string(outBytes), string(errBytes), code
}

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunWithNoArgsPrintsHelpAndExits2(t *testing.T) {
	_, stderr, code := capture(t, func() int { return run([]string{"csl"}) })
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid arguments")
}

func TestRunHelpFlagExits0(t *testing.T) {
	stdout, _, code := capture(t, func() int { return run([]string{"csl", "--help"}) })
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestRunTestOnValidSchemaExits0(t *testing.T) {
	path := writeTemp(t, "valid.csl", `config Server {
  host: string;
  port: number;
}`)
	stdout, stderr, code := capture(t, func() int { return runTest([]string{path}) })
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "csl")
}

func TestRunTestOnInvalidSchemaExits1(t *testing.T) {
	path := writeTemp(t, "invalid.csl", `config Server {
  host string;
}`)
	_, stderr, code := capture(t, func() int { return runTest([]string{path}) })
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Errors in")
}

func TestRunTestOnMissingFileExits1(t *testing.T) {
	_, stderr, code := capture(t, func() int { return runTest([]string{"/no/such/file.csl"}) })
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "is not valid")
}

func TestRunTestWithNoFilesExits2(t *testing.T) {
	_, _, code := capture(t, func() int { return runTest(nil) })
	assert.Equal(t, 2, code)
}

func TestRunHTMLDocGeneratesOnePagePerSchema(t *testing.T) {
	path := writeTemp(t, "schema.csl", `config Server {
  host: string;
  port: number;
}`)
	outDir := t.TempDir()
	stdout, _, code := capture(t, func() int { return runHTMLDoc([]string{path, outDir}) })
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "generated 1 file(s)")

	data, err := os.ReadFile(filepath.Join(outDir, "server.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "host")
}

func TestRunHTMLDocOnParseErrorExits1(t *testing.T) {
	path := writeTemp(t, "bad.csl", `config Server {
  host string;
}`)
	outDir := t.TempDir()
	_, stderr, code := capture(t, func() int { return runHTMLDoc([]string{path, outDir}) })
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Errors in")
}

func TestRunHTMLDocRequiresTwoArgs(t *testing.T) {
	_, _, code := capture(t, func() int { return runHTMLDoc([]string{"only-one-arg"}) })
	assert.Equal(t, 2, code)
}

func TestRunLangServerRequiresStdioFlag(t *testing.T) {
	_, stderr, code := capture(t, func() int { return runLangServer(nil) })
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "--stdio")
}

func TestLoadWorkspaceConfigDefaultsWhenPathEmpty(t *testing.T) {
	cfg, err := loadWorkspaceConfig("")
	require.NoError(t, err)
	assert.Equal(t, "off", cfg.TraceValue)
	assert.Equal(t, "light", cfg.HTMLTheme)
}

func TestLoadWorkspaceConfigReadsYAML(t *testing.T) {
	path := writeTemp(t, "config.yaml", "traceValue: messages\nhtmlTheme: dark\n")
	cfg, err := loadWorkspaceConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "messages", cfg.TraceValue)
	assert.Equal(t, "dark", cfg.HTMLTheme)
}
