package compiler

import "github.com/Ashymad/dlox/internal/lexer"

// Precedence is the ladder parsePrecedence climbs. Or/And and Call/Property
// are carried as named rungs even though this grammar (spec.md §6) binds no
// token to them yet — consistent with reserving room for forms the
// bytecode core does not implement.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment       // =
	PrecOr                // or
	PrecAnd               // and
	PrecEquality          // == !=
	PrecComparison        // < <= > >=
	PrecTerm              // + -
	PrecFactor            // * /
	PrecUnary             // ! -
	PrecCall              // . ()
	PrecPrimary
)

// parseFn is a prefix or infix parse rule. canAssign is true only when the
// surrounding parsePrecedence call admits PrecAssignment, so a bare
// identifier knows whether `=` following it is a valid assignment target.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[lexer.TokenKind]parseRule

func init() {
	rules = map[lexer.TokenKind]parseRule{
		lexer.TokenLeftParen:    {prefix: grouping},
		lexer.TokenMinus:        {prefix: unary, infix: binary, precedence: PrecTerm},
		lexer.TokenPlus:         {infix: binary, precedence: PrecTerm},
		lexer.TokenSlash:        {infix: binary, precedence: PrecFactor},
		lexer.TokenStar:         {infix: binary, precedence: PrecFactor},
		lexer.TokenBang:         {prefix: unary},
		lexer.TokenBangEqual:    {infix: binary, precedence: PrecEquality},
		lexer.TokenEqualEqual:   {infix: binary, precedence: PrecEquality},
		lexer.TokenGreater:      {infix: binary, precedence: PrecComparison},
		lexer.TokenGreaterEqual: {infix: binary, precedence: PrecComparison},
		lexer.TokenLess:         {infix: binary, precedence: PrecComparison},
		lexer.TokenLessEqual:    {infix: binary, precedence: PrecComparison},
		lexer.TokenNumber:       {prefix: number},
		lexer.TokenString:       {prefix: stringLiteral},
		lexer.TokenIdent:        {prefix: variable},
		lexer.TokenNil:          {prefix: literal},
		lexer.TokenTrue:         {prefix: literal},
		lexer.TokenFalse:        {prefix: literal},
	}
}

func getRule(kind lexer.TokenKind) parseRule {
	return rules[kind]
}
