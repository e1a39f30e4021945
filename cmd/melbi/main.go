// Command melbi evaluates a single expression and prints its result, or
// diagnostics if compilation failed.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/pkg/melbi"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	source, err := readSource(args, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "melbi: %s\n", err)
		return 1
	}

	core := melbi.New()
	compiled, err := core.Compile(source)
	if err != nil {
		printDiagnostics(stderr, source, compiled.Diagnostics())
		return 1
	}
	if warnings := compiled.Diagnostics(); len(warnings) > 0 {
		printDiagnostics(stderr, source, warnings)
	}

	result, err := core.Evaluate(context.Background(), compiled, nil, core.Limits())
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", colorize(errorColor, err.Error()))
		return 1
	}

	if result.IsError() {
		tag, _ := result.ErrorTag()
		fmt.Fprintf(stdout, "%s\n", colorize(errorColor, "Error("+tag.Message+")"))
		return 1
	}
	fmt.Fprintln(stdout, result.String())
	return 0
}

// readSource reads the expression from the first positional argument, or
// from stdin if no argument was given (so `echo '1+1' | melbi` also works).
func readSource(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var all []byte
	for scanner.Scan() {
		all = append(all, scanner.Bytes()...)
		all = append(all, '\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return string(all), nil
}

func printDiagnostics(w io.Writer, source string, diags diagnostics.List) {
	for _, d := range diags {
		col := errorColor
		if d.Severity != diagnostics.Error {
			col = warningColor
		}
		fmt.Fprintf(w, "%s %s\n", colorize(col, d.Severity.String()+"["+string(d.Code)+"]"), d.Message)
		fmt.Fprintf(w, "  %s %s\n", colorize(dimColor, "at"), d.Span)
		if d.Help != "" {
			fmt.Fprintf(w, "  %s %s\n", colorize(dimColor, "help:"), d.Help)
		}
	}
}
