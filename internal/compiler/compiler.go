// Package compiler implements dlox's single-pass Pratt compiler: it walks
// the token stream exactly once and emits bytecode directly into a Chunk,
// with no intermediate AST. Each token kind has a parse-rule row
// ({prefix, infix, precedence}, see precedence.go); parsePrecedence
// consumes one prefix and then any infixes whose precedence is at least as
// high as the precedence it was called with.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/Ashymad/dlox/internal/bytecode"
	loxerrors "github.com/Ashymad/dlox/internal/errors"
	"github.com/Ashymad/dlox/internal/lexer"
	"github.com/Ashymad/dlox/internal/value"
)

// Compiler holds single-pass parser state: the current/previous token, the
// chunk being emitted into, and the panic-mode error-recovery flags spec.md
// §4.2 describes.
type Compiler struct {
	scanner *lexer.Scanner
	heap    *value.Heap
	chunk   *bytecode.Chunk

	previous lexer.Token
	current  lexer.Token

	hadError  bool
	panicMode bool
	firstErr  error
}

// Compile compiles source into chunk, allocating any literal/global-name
// string objects on heap so the VM that eventually runs chunk shares their
// ownership. It returns a *errors.LoxError (Kind: CompileError) describing
// the first diagnostic if compilation failed; chunk is left containing
// whatever was successfully emitted before the error (the caller must not
// run it).
func Compile(source string, chunk *bytecode.Chunk, heap *value.Heap) error {
	c := &Compiler{
		scanner: lexer.NewScanner(source),
		heap:    heap,
		chunk:   chunk,
	}
	c.advance()
	for !c.check(lexer.TokenEOF) {
		c.declaration()
	}
	c.consume(lexer.TokenEOF, "Expect end of expression.")
	c.emitOp(bytecode.OpReturn)

	if c.hadError {
		return c.firstErr
	}
	return nil
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.NextToken()
		if c.current.Kind != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(kind lexer.TokenKind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind lexer.TokenKind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind lexer.TokenKind, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting & panic-mode synchronization ---------------------

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok lexer.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var where string
	switch tok.Kind {
	case lexer.TokenEOF:
		where = "at end"
	case lexer.TokenError:
		where = ""
	default:
		where = fmt.Sprintf("at '%s'", tok.Lexeme)
	}
	var text string
	if where == "" {
		text = fmt.Sprintf("[line %d] Error: %s", tok.Line, msg)
	} else {
		text = fmt.Sprintf("[line %d] Error %s: %s", tok.Line, where, msg)
	}
	if c.firstErr == nil {
		c.firstErr = loxerrors.NewCompileError(tok.Line, "%s", text)
	}
}

// synchronize skips tokens until a statement boundary, so one malformed
// statement does not cascade into spurious errors on the rest of the file.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != lexer.TokenEOF {
		if c.previous.Kind == lexer.TokenSemicolon {
			return
		}
		switch c.current.Kind {
		case lexer.TokenVar, lexer.TokenPrint:
			return
		}
		c.advance()
	}
}

// --- emit helpers -------------------------------------------------------

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.OpCode) {
	c.chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOp(bytecode.OpConstant)
	c.emitByte(idx)
}

// identifierConstant interns name's bytes and adds the resulting string
// Value to the constant pool, returning its index. Globals are named by
// constant-pool string, not by a symbol table, per spec.md §4.2.
func (c *Compiler) identifierConstant(name string) byte {
	idx, err := c.chunk.AddConstant(value.Obj(c.heap.NewString(name)))
	if err != nil {
		c.error(err.Error())
		return 0
	}
	return idx
}

// --- declarations & statements ------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	c.consume(lexer.TokenIdent, "Expect variable name.")
	name := c.previous.Lexeme
	if c.match(lexer.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration.")
	c.emitOp(bytecode.OpDefineGlobal)
	c.emitByte(c.identifierConstant(name))
}

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.TokenPrint):
		c.printStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

// --- expressions ---------------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	rule := getRule(c.previous.Kind)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case lexer.TokenBang:
		c.emitOp(bytecode.OpNot)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpNegate)
	}
}

func binary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case lexer.TokenPlus:
		c.emitOp(bytecode.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpSubtract)
	case lexer.TokenStar:
		c.emitOp(bytecode.OpMultiply)
	case lexer.TokenSlash:
		c.emitOp(bytecode.OpDivide)
	case lexer.TokenEqualEqual:
		c.emitOp(bytecode.OpEqual)
	case lexer.TokenBangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case lexer.TokenGreater:
		c.emitOp(bytecode.OpGreater)
	case lexer.TokenGreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case lexer.TokenLess:
		c.emitOp(bytecode.OpLess)
	case lexer.TokenLessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case lexer.TokenNil:
		c.emitOp(bytecode.OpNil)
	case lexer.TokenTrue:
		c.emitOp(bytecode.OpTrue)
	case lexer.TokenFalse:
		c.emitOp(bytecode.OpFalse)
	}
}

func number(c *Compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func stringLiteral(c *Compiler, _ bool) {
	obj := c.heap.NewString(c.previous.Lexeme)
	c.emitConstant(value.Obj(obj))
}

func variable(c *Compiler, canAssign bool) {
	name := c.previous.Lexeme
	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOp(bytecode.OpSetGlobal)
		c.emitByte(c.identifierConstant(name))
		return
	}
	c.emitOp(bytecode.OpGetGlobal)
	c.emitByte(c.identifierConstant(name))
}
