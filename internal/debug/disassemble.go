// Package debug renders a bytecode.Chunk as human-readable disassembly, the
// external collaborator spec.md's VM component table names but leaves
// unspecified beyond its interface. It is wired into the CLI's --trace flag.
package debug

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Ashymad/dlox/internal/bytecode"
)

var (
	opColor      = color.New(color.FgCyan)
	operandColor = color.New(color.FgYellow)
	lineColor    = color.New(color.FgHiBlack)
)

// DisassembleChunk writes one line per instruction in chunk to w, prefixed
// with name. Constant operands are rendered as their Value.String() form
// alongside the raw pool index, the same way the VM itself would read them.
func DisassembleChunk(w io.Writer, chunk *bytecode.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes the single instruction at offset and
// returns the offset of the next one.
func DisassembleInstruction(w io.Writer, chunk *bytecode.Chunk, offset int) int {
	line := chunk.GetLine(offset)
	fmt.Fprint(w, lineColor.Sprintf("%4d ", line))

	op := bytecode.OpCode(chunk.Code[offset])
	fmt.Fprint(w, opColor.Sprint(op.String()))

	if !op.HasOperand() {
		fmt.Fprintln(w)
		return offset + 1
	}

	idx := chunk.Code[offset+1]
	val := chunk.Constants[idx]
	fmt.Fprintf(w, " %s\n", operandColor.Sprintf("%d '%s'", idx, val.String()))
	return offset + 2
}
