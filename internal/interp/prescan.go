package interp

import (
	"indentlang/internal/diag"
	"indentlang/internal/lexer"
	"indentlang/internal/scope"
	"indentlang/internal/value"
)

// prescan is a first pass over the main file's tokens that registers
// every top-level function name, bound to a position at the `(` after
// its identifier, before any statement runs. Functions reached later
// via import are registered lazily by execDef instead, since they are
// not yet on the token stream here.
func (i *Interpreter) prescan() {
	for i.tok().Kind != lexer.ENDMARKER {
		if i.tok().Kind != lexer.DEF {
			i.next()
			continue
		}
		i.next()
		name := i.expectFuncName()
		i.registerFunc(name)
		i.skipToNewline()
		i.skipBlock()
	}
}

func (i *Interpreter) expectFuncName() string {
	if i.tok().Kind != lexer.IDENT {
		i.fatal(diag.SyntaxError, "expected function name after 'def'")
	}
	name := i.tok().Lexeme
	i.next()
	if i.tok().Kind != lexer.LPAR {
		i.fatal(diag.SyntaxError, "expected '(' after function name %q", name)
	}
	return name
}

// registerFunc binds name, in the module frame, to a position at the
// current token (the `(` the caller has just arrived at). Duplicate
// registration is a NameError.
func (i *Interpreter) registerFunc(name string) {
	pos := i.save()
	id, err := i.scopes.AddInModule(name)
	if err != nil {
		i.fatal(diag.NameError, "function %q already defined", name)
	}
	scope.Bind(id, pos)
	value.DecRef(pos)
}

// skipToNewline advances to, but does not consume, the next NEWLINE.
// Used after a function signature line to reach the header's end
// before skipBlock takes over.
func (i *Interpreter) skipToNewline() {
	for i.tok().Kind != lexer.NEWLINE && i.tok().Kind != lexer.ENDMARKER {
		i.next()
	}
}

// skipBlock discards an entire block: starting at the NEWLINE that
// opens it, consume NEWLINE, INDENT, the whole body at balanced
// INDENT/DEDENT depth, and the closing DEDENT, leaving the cursor on
// (not past) whatever statement or keyword follows the block.
func (i *Interpreter) skipBlock() {
	i.expect(lexer.NEWLINE)
	i.expect(lexer.INDENT)
	depth := 1
	for depth > 0 {
		switch i.tok().Kind {
		case lexer.INDENT:
			depth++
		case lexer.DEDENT:
			depth--
		case lexer.ENDMARKER:
			depth = 0
		}
		i.next()
	}
}

// fastForwardToBlockDedent implements the block executor's break/
// continue/return exit path: skip past any statements and
// nested blocks remaining in the current block, stopping right before
// the DEDENT that closes it; the caller consumes that DEDENT.
func (i *Interpreter) fastForwardToBlockDedent() {
	depth := 0
	for {
		switch i.tok().Kind {
		case lexer.INDENT:
			depth++
			i.next()
		case lexer.DEDENT:
			if depth == 0 {
				return
			}
			depth--
			i.next()
		case lexer.ENDMARKER:
			return
		default:
			i.next()
		}
	}
}
