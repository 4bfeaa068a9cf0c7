package bytecode

// OpCode is a single bytecode instruction. Every opcode is one byte;
// operand widths are documented per opcode below and are fixed at one
// byte for constant-pool indices.
type OpCode byte

const (
	OpConstant OpCode = iota // u8 idx: push chunk.constants[idx]
	OpNil                    // push nil
	OpTrue                   // push true
	OpFalse                  // push false
	OpPop                    // discard top
	OpGetGlobal              // u8 idx: push globals[name] or RuntimeError
	OpDefineGlobal           // u8 idx: globals[name] = pop()
	OpSetGlobal              // u8 idx: globals[name] = peek(0) if present, else RuntimeError
	OpEqual                  // push a == b
	OpGreater                // push a > b (numeric)
	OpLess                   // push a < b (numeric)
	OpAdd                    // string concat or numeric add
	OpSubtract               // numeric
	OpMultiply               // numeric
	OpDivide                 // numeric
	OpNegate                 // numeric unary
	OpNot                    // push !truthy(pop)
	OpPrint                  // write pop's textual form + newline
	OpReturn                 // terminate execution successfully
)

var names = map[OpCode]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNegate:       "OP_NEGATE",
	OpNot:          "OP_NOT",
	OpPrint:        "OP_PRINT",
	OpReturn:       "OP_RETURN",
}

// String names an opcode for disassembly. Unknown bytes, which indicate a
// compiler bug, render as "OP_UNKNOWN" rather than panicking.
func (op OpCode) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// HasOperand reports whether op is followed by a single u8 constant-pool
// index, the only operand shape this opcode set uses.
func (op OpCode) HasOperand() bool {
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		return true
	default:
		return false
	}
}
