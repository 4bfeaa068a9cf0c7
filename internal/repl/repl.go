// Package repl implements dlox's interactive loop: one VM instance persists
// globals and the string heap across evaluations, the way sentra's repl
// package keeps a single vm.VM alive across lines typed at the prompt.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/Ashymad/dlox/internal/config"
	loxerrors "github.com/Ashymad/dlox/internal/errors"
	"github.com/Ashymad/dlox/internal/vm"
)

var (
	errColor = color.New(color.FgRed, color.Bold)
	locColor = color.New(color.FgHiBlack)
	dimColor = color.New(color.FgHiBlack)
)

// Options configures a REPL run; the zero value is the plain, untraced
// REPL reading from os.Stdin.
type Options struct {
	Trace bool
}

// Start runs the REPL loop until EOF or an interrupt closes in. It returns
// only on end of input; runtime and compile errors inside the loop are
// reported to stderr and do not end the session.
func Start(in io.Reader, out, errOut io.Writer, opts Options) error {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(errOut, "warning: could not load .dloxrc.toml: %v\n", err)
		cfg = config.Defaults()
	}

	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if interactive && cfg.HistoryFile == "" {
		cfg.HistoryFile = config.DefaultHistoryPath()
	}

	history, err := loadHistory(cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(errOut, "warning: could not load history: %v\n", err)
	}

	if interactive {
		fmt.Fprintln(out, "dlox REPL | Ctrl-D to exit")
	}

	session := vm.New(out, errOut)
	scanner := bufio.NewScanner(in)

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		history = append(history, line)

		start := time.Now()
		var runErr error
		if opts.Trace {
			runErr = session.InterpretTraced(line, out)
		} else {
			runErr = session.Interpret(line)
		}
		elapsed := time.Since(start)

		if runErr != nil {
			reportError(errOut, runErr)
		}
		if cfg.ShowTiming {
			fmt.Fprintln(out, dimColor.Sprintf("(%s)", elapsed))
		}
	}
	if interactive {
		fmt.Fprintln(out)
	}

	if err := saveHistory(cfg.HistoryFile, history); err != nil {
		fmt.Fprintf(errOut, "warning: could not save history: %v\n", err)
	}
	return scanner.Err()
}

// reportError renders a compile or runtime error the way the CLI's
// non-interactive path does, so REPL and script diagnostics look alike.
func reportError(errOut io.Writer, err error) {
	if le, ok := loxerrors.AsLoxError(err); ok {
		fmt.Fprintf(errOut, "%s %s\n", errColor.Sprint(le.Kind), le.Message)
		fmt.Fprintln(errOut, locColor.Sprintf("[line %d]", le.Line))
		return
	}
	fmt.Fprintln(errOut, errColor.Sprint(err))
}

func loadHistory(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func saveHistory(path string, lines []string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
