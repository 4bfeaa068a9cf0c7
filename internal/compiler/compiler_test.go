package compiler

import (
	"strings"
	"testing"

	"github.com/Ashymad/dlox/internal/bytecode"
	loxerrors "github.com/Ashymad/dlox/internal/errors"
	"github.com/Ashymad/dlox/internal/value"
)

func compile(t *testing.T, source string) (*bytecode.Chunk, error) {
	t.Helper()
	chunk := bytecode.NewChunk()
	heap := value.NewHeap()
	err := Compile(source, chunk, heap)
	return chunk, err
}

func TestCompileSimpleExpressionStatement(t *testing.T) {
	chunk, err := compile(t, "1 + 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []bytecode.OpCode{
		bytecode.OpConstant, // not compared; only the trailing opcodes are checked below
	}
	_ = want
	if len(chunk.Code) == 0 {
		t.Fatalf("expected emitted bytecode, got none")
	}
	last := bytecode.OpCode(chunk.Code[len(chunk.Code)-2])
	if last != bytecode.OpPop {
		t.Fatalf("expected expression statement to end in OpPop, got %v", last)
	}
	if bytecode.OpCode(chunk.Code[len(chunk.Code)-1]) != bytecode.OpReturn {
		t.Fatalf("expected chunk to end in OpReturn")
	}
}

func TestPrecedenceClimbing(t *testing.T) {
	// 1 + 2 * 3 must multiply before adding: CONST 2, CONST 3, MULTIPLY, ADD.
	chunk, err := compile(t, "print 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ops []bytecode.OpCode
	for i := 0; i < len(chunk.Code); {
		op := bytecode.OpCode(chunk.Code[i])
		ops = append(ops, op)
		i++
		if op.HasOperand() {
			i++
		}
	}
	want := []bytecode.OpCode{
		bytecode.OpConstant, bytecode.OpConstant, bytecode.OpConstant,
		bytecode.OpMultiply, bytecode.OpAdd, bytecode.OpPrint, bytecode.OpReturn,
	}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i, op := range ops {
		if op != want[i] {
			t.Fatalf("op %d = %v, want %v (%v)", i, op, want[i], ops)
		}
	}
}

func TestComparisonOperatorsCompileToCombinedOpcodes(t *testing.T) {
	cases := map[string][]bytecode.OpCode{
		"1 >= 2;": {bytecode.OpLess, bytecode.OpNot},
		"1 <= 2;": {bytecode.OpGreater, bytecode.OpNot},
		"1 != 2;": {bytecode.OpEqual, bytecode.OpNot},
	}
	for src, want := range cases {
		chunk, err := compile(t, src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		var ops []bytecode.OpCode
		for i := 0; i < len(chunk.Code); {
			op := bytecode.OpCode(chunk.Code[i])
			ops = append(ops, op)
			i++
			if op.HasOperand() {
				i++
			}
		}
		// ops: CONST, CONST, <want...>, POP, RETURN
		got := ops[2 : len(ops)-2]
		if len(got) != len(want) {
			t.Fatalf("%s: got %v, want %v", src, got, want)
		}
		for i, op := range got {
			if op != want[i] {
				t.Fatalf("%s: op %d = %v, want %v", src, i, op, want[i])
			}
		}
	}
}

func TestVarDeclarationWithoutInitializerDefaultsToNil(t *testing.T) {
	chunk, err := compile(t, "var x;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytecode.OpCode(chunk.Code[0]) != bytecode.OpNil {
		t.Fatalf("expected OpNil first, got %v", bytecode.OpCode(chunk.Code[0]))
	}
}

func TestMissingSemicolonIsCompileError(t *testing.T) {
	_, err := compile(t, "print 1")
	le, ok := loxerrors.AsLoxError(err)
	if !ok || le.Kind != loxerrors.KindCompile {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if !strings.Contains(le.Message, "';'") {
		t.Fatalf("message %q missing expected hint", le.Message)
	}
}

func TestUnexpectedTokenIsCompileError(t *testing.T) {
	_, err := compile(t, "var x = ;")
	le, ok := loxerrors.AsLoxError(err)
	if !ok || le.Kind != loxerrors.KindCompile {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if !strings.Contains(le.Message, "Expect expression.") {
		t.Fatalf("message %q, want mention of Expect expression.", le.Message)
	}
}

func TestBlockBracesAreRejectedAsExpression(t *testing.T) {
	_, err := compile(t, "{ 1; }")
	le, ok := loxerrors.AsLoxError(err)
	if !ok || le.Kind != loxerrors.KindCompile {
		t.Fatalf("expected CompileError for unsupported block syntax, got %v", err)
	}
}

func TestPanicModeSynchronizesAtNextStatement(t *testing.T) {
	// The first statement is malformed ('=' with no left-hand expression);
	// synchronize should recover at the following `print` statement rather
	// than cascading into a second spurious diagnostic.
	chunk, err := compile(t, "= 1; print 2;")
	if err == nil {
		t.Fatalf("expected a compile error from the malformed first statement")
	}
	var ops []bytecode.OpCode
	for i := 0; i < len(chunk.Code); {
		op := bytecode.OpCode(chunk.Code[i])
		ops = append(ops, op)
		i++
		if op.HasOperand() {
			i++
		}
	}
	foundPrint := false
	for _, op := range ops {
		if op == bytecode.OpPrint {
			foundPrint = true
		}
	}
	if !foundPrint {
		t.Fatalf("expected recovery to still compile the print statement, got ops %v", ops)
	}
}

func TestTooManyConstantsIsCompileError(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("1;\n")
	}
	_, err := compile(t, b.String())
	le, ok := loxerrors.AsLoxError(err)
	if !ok || le.Kind != loxerrors.KindCompile {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if !strings.Contains(le.Message, "too many constants") {
		t.Fatalf("message %q, want mention of too many constants", le.Message)
	}
}
