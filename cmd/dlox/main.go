// Command dlox is the driver for the dlox bytecode interpreter: a REPL when
// run with no arguments, a one-shot script runner otherwise, plus the
// `check` subcommand and the `--trace`/`--time` flags this expansion adds
// on top of spec.md's bare run/REPL surface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	loxerrors "github.com/Ashymad/dlox/internal/errors"
	"github.com/Ashymad/dlox/internal/repl"
	"github.com/Ashymad/dlox/internal/vm"
)

// Exit codes. 0 and 64/65/70 follow the sysexits.h convention spec.md's
// error-handling design adopts for usage/compile/runtime failures.
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

var errDiag = color.New(color.FgRed, color.Bold)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		if err := repl.Start(os.Stdin, os.Stdout, os.Stderr, repl.Options{}); err != nil {
			fmt.Fprintln(os.Stderr, errDiag.Sprint(err))
			return exitRuntime
		}
		return exitOK
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
		return exitOK
	case "repl":
		trace := hasFlag(args[1:], "--trace")
		if err := repl.Start(os.Stdin, os.Stdout, os.Stderr, repl.Options{Trace: trace}); err != nil {
			fmt.Fprintln(os.Stderr, errDiag.Sprint(err))
			return exitRuntime
		}
		return exitOK
	case "check":
		path, _ := firstNonFlag(args[1:])
		if path == "" {
			fmt.Fprintln(os.Stderr, "usage: dlox check <path>")
			return exitUsage
		}
		return runCheck(path)
	case "run":
		path, flags := firstNonFlag(args[1:])
		if path == "" {
			fmt.Fprintln(os.Stderr, "usage: dlox run [--trace] [--time] <path>")
			return exitUsage
		}
		return runScript(path, hasFlag(flags, "--trace"), hasFlag(flags, "--time"))
	default:
		// spec.md §6: `dlox <path>` runs a file with no subcommand.
		return runScript(args[0], hasFlag(args[1:], "--trace"), hasFlag(args[1:], "--time"))
	}
}

func runScript(path string, trace, showTime bool) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dlox: %v\n", err)
		return exitUsage
	}

	session := vm.New(os.Stdout, os.Stderr)
	start := time.Now()

	var runErr error
	if trace {
		runErr = session.InterpretTraced(string(source), os.Stdout)
	} else {
		runErr = session.Interpret(string(source))
	}
	elapsed := time.Since(start)
	session.Free()

	if runErr != nil {
		return reportAndExitCode(runErr)
	}
	if showTime {
		fmt.Fprintf(os.Stdout, "[%s, %s bytes read]\n", elapsed, humanize.Comma(int64(len(source))))
	}
	return exitOK
}

func runCheck(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dlox: %v\n", err)
		return exitUsage
	}

	session := vm.New(os.Stdout, os.Stderr)
	defer session.Free()

	if err := session.CompileOnly(string(source)); err != nil {
		reportError(err)
		return exitCompile
	}
	fmt.Printf("%s: syntax is valid\n", path)
	return exitOK
}

func reportAndExitCode(err error) int {
	reportError(err)
	le, ok := loxerrors.AsLoxError(err)
	if !ok {
		return exitRuntime
	}
	if le.Kind == loxerrors.KindCompile {
		return exitCompile
	}
	return exitRuntime
}

func reportError(err error) {
	if le, ok := loxerrors.AsLoxError(err); ok {
		fmt.Fprintf(os.Stderr, "%s %s\n[line %d]\n", errDiag.Sprint(le.Kind), le.Message, le.Line)
		return
	}
	fmt.Fprintln(os.Stderr, errDiag.Sprint(errors.Cause(err)))
}

// hasFlag reports whether name appears anywhere in flags.
func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

// firstNonFlag returns the first argument not starting with "-" and the
// full remaining argument slice (so flags can be anywhere relative to the
// path, matching sentra's own flag-filtering `run` command).
func firstNonFlag(args []string) (path string, rest []string) {
	for _, a := range args {
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		if path == "" {
			path = a
		}
	}
	return path, args
}

func showUsage() {
	fmt.Println("dlox - a bytecode-compiled scripting language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dlox                       Start the REPL")
	fmt.Println("  dlox repl [--trace]        Start the REPL, optionally tracing bytecode")
	fmt.Println("  dlox <path>                Run a script")
	fmt.Println("  dlox run [--trace] [--time] <path>")
	fmt.Println("                             Run a script with extra diagnostics")
	fmt.Println("  dlox check <path>          Compile a script without running it")
	fmt.Println("  dlox --help                Show this message")
}
