// Command loxwalk runs a single source file through the lexer, parser, and
// tree-walking evaluator, printing the program's own output followed by at
// most one diagnostic if a parse or runtime error occurred.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/metaphox/loxwalk/interp"
	"github.com/metaphox/loxwalk/lexer"
	"github.com/metaphox/loxwalk/parser"
)

// Sentinel categories for readSource failures, distinct from the fs package's
// own ErrNotExist/ErrPermission so classifyReadErr can tell them apart from
// a bare os.ReadFile failure.
var (
	errIsDirectory = errors.New("is a directory")
	errTooLarge    = errors.New("file too large")
	errIO          = errors.New("I/O error")
)

// maxSourceSize bounds how much source loxwalk will read into memory for a
// single run. Generous for a script file; guards against pointing it at
// something that isn't one.
const maxSourceSize = 10 << 20

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: loxwalk <path>")
		return
	}
	path := os.Args[1]

	src, err := readSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, classifyReadErr(err, path))
		os.Exit(1)
	}

	if exitCode := run(path, src); exitCode != 0 {
		os.Exit(exitCode)
	}
}

func readSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, errIsDirectory)
	}
	if info.Size() > maxSourceSize {
		return "", fmt.Errorf("%s: %w", path, errTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, errIO)
	}
	return string(data), nil
}

func classifyReadErr(err error, path string) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("not found: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("access denied: %s", path)
	case errors.Is(err, errIsDirectory):
		return fmt.Sprintf("is a directory: %s", path)
	case errors.Is(err, errTooLarge):
		return fmt.Sprintf("file too large: %s", path)
	case errors.Is(err, errIO):
		return fmt.Sprintf("I/O error reading %s: %v", path, err)
	default:
		return fmt.Sprintf("could not read %s: %v", path, err)
	}
}

// run parses and evaluates src, printing its own "print" output plus at most
// one diagnostic, and reports the process exit code.
func run(file, src string) int {
	l := lexer.New(src)
	p := parser.New(l, src)
	prog, diags := p.Parse()
	if len(diags) > 0 {
		fmt.Println(FormatParseError(file, src, diags[0]))
		return 1
	}

	ev := interp.New(os.Stdout, src)
	r := ev.Run(prog)
	if r.Kind == interp.ResError {
		fmt.Println(FormatRuntimeError(file, r))
		return 1
	}
	return 0
}
