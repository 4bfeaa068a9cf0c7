// Package errors defines the typed error taxonomy this interpreter
// reports across scan, compile, and runtime failures.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind names the taxonomy spec.md §7 describes. ScanError surfaces as a
// CompileError (an error token flowing through the same panic-mode
// recovery), so it is not a distinct Kind here.
type Kind string

const (
	KindCompile Kind = "CompileError"
	KindRuntime Kind = "RuntimeError"
	KindUsage   Kind = "UsageError"
)

// LoxError is the typed error carried out of Compile and Interpret. Line
// is 1-based and, for CompileError, the line of the offending token; for
// RuntimeError, the line of the failing instruction.
type LoxError struct {
	Kind    Kind
	Message string
	Line    int
}

func (e *LoxError) Error() string {
	return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
}

func NewCompileError(line int, format string, args ...interface{}) *LoxError {
	return &LoxError{Kind: KindCompile, Message: fmt.Sprintf(format, args...), Line: line}
}

func NewRuntimeError(line int, format string, args ...interface{}) *LoxError {
	return &LoxError{Kind: KindRuntime, Message: fmt.Sprintf(format, args...), Line: line}
}

// Wrap attaches a stack trace the first time an error crosses a package
// boundary, via pkg/errors, while leaving a *LoxError unwrappable at the
// CLI boundary with As/Cause.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, context)
}

// AsLoxError unwraps err (including pkg/errors-wrapped chains) down to the
// underlying *LoxError, if any.
func AsLoxError(err error) (*LoxError, bool) {
	if err == nil {
		return nil, false
	}
	le, ok := pkgerrors.Cause(err).(*LoxError)
	return le, ok
}
