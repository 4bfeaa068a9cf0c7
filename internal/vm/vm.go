// Package vm implements the stack-based bytecode VM: a fixed-capacity
// operand stack, a dispatch loop over bytecode.OpCode, and the globals
// table and string heap the compiler and VM share across REPL evaluations.
package vm

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Ashymad/dlox/internal/bytecode"
	"github.com/Ashymad/dlox/internal/compiler"
	"github.com/Ashymad/dlox/internal/debug"
	loxerrors "github.com/Ashymad/dlox/internal/errors"
	"github.com/Ashymad/dlox/internal/table"
	"github.com/Ashymad/dlox/internal/value"
)

// stackCapacity bounds the operand stack. The compiler only ever emits
// bytecode for expressions built from this grammar's bounded nesting, so
// overflow here indicates a VM invariant violation, not a normal runtime
// condition a well-formed program can trigger through recursion (the
// bytecode core has no functions to recurse with).
const stackCapacity = 256

// VM is a single-threaded, synchronous stack machine. One VM owns its
// globals and string heap for its whole lifetime; in REPL mode the same VM
// runs many chunks in sequence and both persist across them.
type VM struct {
	chunk *bytecode.Chunk
	ip    int

	stack [stackCapacity]value.Value
	top   int

	globals *table.HashTable[*value.Object, value.Value]
	heap    *value.Heap

	stdout io.Writer
	stderr io.Writer

	// ID distinguishes one VM instance's --trace output from another's
	// when several persistent REPL sessions are captured in the same log.
	ID uuid.UUID
}

// New creates a VM whose PRINT statements write to stdout and whose
// runtime diagnostics write to stderr.
func New(stdout, stderr io.Writer) *VM {
	return &VM{
		globals: table.New[*value.Object, value.Value](func(o *value.Object) uint32 { return o.Str.Hash }),
		heap:    value.NewHeap(),
		stdout:  stdout,
		stderr:  stderr,
		ID:      uuid.New(),
	}
}

// Interpret compiles source and, if compilation succeeds, runs it. Globals
// and the string heap carry over from any previous call on the same VM
// (REPL semantics); a failed compile leaves globals untouched, though any
// strings it interned before the error stay in the heap.
func (vm *VM) Interpret(source string) error {
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(source, chunk, vm.heap); err != nil {
		return loxerrors.Wrap(err, "compile")
	}
	if err := vm.Run(chunk); err != nil {
		return loxerrors.Wrap(err, "interpret")
	}
	return nil
}

// CompileOnly runs source through the compiler and discards the resulting
// chunk without executing it, backing the `dlox check` subcommand.
func (vm *VM) CompileOnly(source string) error {
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(source, chunk, vm.heap); err != nil {
		return loxerrors.Wrap(err, "compile")
	}
	return nil
}

// InterpretTraced behaves like Interpret but, on a successful compile,
// first disassembles the chunk to trace (the --trace driver flag) before
// running it.
func (vm *VM) InterpretTraced(source string, trace io.Writer) error {
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(source, chunk, vm.heap); err != nil {
		return loxerrors.Wrap(err, "compile")
	}
	fmt.Fprintf(trace, "-- session %s --\n", vm.ID)
	debug.DisassembleChunk(trace, chunk, "trace")
	if err := vm.Run(chunk); err != nil {
		return loxerrors.Wrap(err, "interpret")
	}
	return nil
}

// Run executes chunk to completion from a fresh stack and instruction
// pointer. It is exported separately from Interpret so a caller that
// wants to disassemble a chunk before running it (the --trace driver flag)
// can do so without recompiling.
func (vm *VM) Run(chunk *bytecode.Chunk) error {
	vm.chunk = chunk
	vm.ip = 0
	vm.top = 0

	for {
		op := bytecode.OpCode(vm.readByte())
		switch op {
		case bytecode.OpConstant:
			if err := vm.push(vm.chunk.Constants[vm.readByte()]); err != nil {
				return err
			}

		case bytecode.OpNil:
			if err := vm.push(value.Nil()); err != nil {
				return err
			}
		case bytecode.OpTrue:
			if err := vm.push(value.Bool(true)); err != nil {
				return err
			}
		case bytecode.OpFalse:
			if err := vm.push(value.Bool(false)); err != nil {
				return err
			}

		case bytecode.OpPop:
			if err := vm.checkedPop(); err != nil {
				return err
			}

		case bytecode.OpGetGlobal:
			name := vm.chunk.Constants[vm.readByte()].Obj
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable: '%s'", name.Str.Bytes)
			}
			if err := vm.push(v); err != nil {
				return err
			}

		case bytecode.OpDefineGlobal:
			name := vm.chunk.Constants[vm.readByte()].Obj
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.globals.Set(name, v)

		case bytecode.OpSetGlobal:
			name := vm.chunk.Constants[vm.readByte()].Obj
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			if !vm.globals.SetExisting(name, v) {
				return vm.runtimeError("Undefined variable: '%s'", name.Str.Bytes)
			}

		case bytecode.OpEqual:
			b, a, err := vm.pop2()
			if err != nil {
				return err
			}
			if err := vm.push(value.Bool(value.Equal(a, b))); err != nil {
				return err
			}

		case bytecode.OpGreater:
			if err := vm.binaryNumeric(op); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.binaryNumeric(op); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
			if err := vm.binaryNumeric(op); err != nil {
				return err
			}

		case bytecode.OpNegate:
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			if !v.IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			_, _ = vm.pop()
			if err := vm.push(value.Number(-v.Num)); err != nil {
				return err
			}

		case bytecode.OpNot:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.push(value.Bool(!v.IsTruthy())); err != nil {
				return err
			}

		case bytecode.OpPrint:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			fmt.Fprintln(vm.stdout, v.String())

		case bytecode.OpReturn:
			return nil

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

// --- stack management -----------------------------------------------------

func (vm *VM) push(v value.Value) error {
	if vm.top >= stackCapacity {
		return vm.runtimeError("Stack overflow.")
	}
	vm.stack[vm.top] = v
	vm.top++
	return nil
}

func (vm *VM) pop() (value.Value, error) {
	if vm.top == 0 {
		return value.Value{}, vm.runtimeError("Stack underflow.")
	}
	vm.top--
	return vm.stack[vm.top], nil
}

func (vm *VM) checkedPop() error {
	_, err := vm.pop()
	return err
}

// pop2 pops b then a (b was pushed last), the left-then-right evaluation
// order spec.md §4.6 mandates for binary operators.
func (vm *VM) pop2() (b, a value.Value, err error) {
	b, err = vm.pop()
	if err != nil {
		return
	}
	a, err = vm.pop()
	return
}

func (vm *VM) peek(distance int) (value.Value, error) {
	idx := vm.top - 1 - distance
	if idx < 0 {
		return value.Value{}, vm.runtimeError("Stack underflow.")
	}
	return vm.stack[idx], nil
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

// --- arithmetic ------------------------------------------------------------

func (vm *VM) add() error {
	b, a, err := vm.pop2()
	if err != nil {
		return err
	}
	switch {
	case a.IsString() && b.IsString():
		return vm.push(value.Obj(vm.heap.Concat(a.Obj, b.Obj)))
	case a.IsNumber() && b.IsNumber():
		return vm.push(value.Number(a.Num + b.Num))
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) binaryNumeric(op bytecode.OpCode) error {
	b, a, err := vm.pop2()
	if err != nil {
		return err
	}
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("Operand must be a number.")
	}
	switch op {
	case bytecode.OpGreater:
		return vm.push(value.Bool(a.Num > b.Num))
	case bytecode.OpLess:
		return vm.push(value.Bool(a.Num < b.Num))
	case bytecode.OpSubtract:
		return vm.push(value.Number(a.Num - b.Num))
	case bytecode.OpMultiply:
		return vm.push(value.Number(a.Num * b.Num))
	case bytecode.OpDivide:
		if b.Num == 0 {
			return vm.runtimeError("Division by zero.")
		}
		return vm.push(value.Number(a.Num / b.Num))
	}
	return nil
}

// --- diagnostics -------------------------------------------------------

// runtimeError reports "<message>\n[line N] in script" to stderr, resets
// the stack so no partial result is observable, and returns the typed
// error Interpret surfaces for exit-code selection.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	line := vm.chunk.GetLine(vm.ip - 1)
	fmt.Fprintf(vm.stderr, "%s\n[line %d] in script\n", msg, line)
	vm.top = 0
	return loxerrors.NewRuntimeError(line, "%s", msg)
}

// Free releases every object this VM's heap owns. Safe to call once the VM
// is no longer needed; a VM must not be used afterward.
func (vm *VM) Free() {
	vm.heap.Free()
}
