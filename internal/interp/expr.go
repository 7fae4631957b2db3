package interp

import (
	"strconv"

	"indentlang/internal/diag"
	"indentlang/internal/lexer"
	"indentlang/internal/scope"
	"indentlang/internal/value"
)

// The methods below implement the expression grammar, lowest to
// highest precedence, each one calling the next tighter level
// for its operands. Every method returns an owned reference the
// caller must eventually DecRef, per internal/value's uniform
// ownership convention.

// evalCommaExpr: one or more assignment_expr separated by commas;
// value is the last (earlier ones are evaluated and discarded).
func (i *Interpreter) evalCommaExpr() *value.Object {
	v := i.evalAssignExpr()
	for i.tok().Kind == lexer.COMMA {
		i.next()
		value.DecRef(v)
		v = i.evalAssignExpr()
	}
	return v
}

// evalAssignExpr: logical-or, with right-associative `=` when the
// left side is a bare identifier. Because the scanner is a token
// cursor rather than a lookahead buffer, detecting "identifier
// followed by =" requires saving a checkpoint, peeking one token
// ahead, and jumping back to reparse as an or_expr if it isn't one,
// the same save/jump backtracking the loops and calls use.
func (i *Interpreter) evalAssignExpr() *value.Object {
	if i.tok().Kind == lexer.IDENT {
		name := i.tok().Lexeme
		savedPos := i.save()
		i.next()
		if i.tok().Kind == lexer.ASSIGN {
			i.next()
			rhs := i.evalAssignExpr()
			value.DecRef(savedPos)

			id := i.scopes.Search(name)
			if id == nil {
				i.fatal(diag.NameError, "undeclared identifier %q", name)
			}
			var coerced *value.Object
			if id.Value != nil {
				c, err := value.ConvertTo(id.Value.Tag(), rhs)
				value.DecRef(rhs)
				i.check(err)
				coerced = c
			} else {
				coerced = value.DeepCopy(rhs)
				value.DecRef(rhs)
			}
			scope.Bind(id, coerced)
			return coerced
		}
		i.jump(savedPos)
		value.DecRef(savedPos)
	}
	return i.evalOrExpr()
}

// evalOrExpr, evalAndExpr: left-associative, never short-circuiting;
// both operands are always evaluated.
func (i *Interpreter) evalOrExpr() *value.Object {
	left := i.evalAndExpr()
	for i.tok().Kind == lexer.OR {
		i.next()
		right := i.evalAndExpr()
		res, err := value.Or(left, right)
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
	return left
}

func (i *Interpreter) evalAndExpr() *value.Object {
	left := i.evalEqExpr()
	for i.tok().Kind == lexer.AND {
		i.next()
		right := i.evalEqExpr()
		res, err := value.And(left, right)
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
	return left
}

// evalEqExpr: == != <>, chained left to right.
func (i *Interpreter) evalEqExpr() *value.Object {
	left := i.evalRelExpr()
	for {
		op := i.tok().Kind
		if op != lexer.EQ && op != lexer.NE && op != lexer.ALTNE {
			return left
		}
		i.next()
		right := i.evalRelExpr()
		var res *value.Object
		var err error
		if op == lexer.EQ {
			res, err = value.Eq(left, right)
		} else {
			res, err = value.Ne(left, right)
		}
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
}

// evalRelExpr: < <= > >= in.
func (i *Interpreter) evalRelExpr() *value.Object {
	left := i.evalAddExpr()
	for {
		op := i.tok().Kind
		if op != lexer.LT && op != lexer.LE && op != lexer.GT && op != lexer.GE && op != lexer.IN {
			return left
		}
		i.next()
		right := i.evalAddExpr()
		var res *value.Object
		var err error
		switch op {
		case lexer.LT:
			res, err = value.Lt(left, right)
		case lexer.LE:
			res, err = value.Le(left, right)
		case lexer.GT:
			res, err = value.Gt(left, right)
		case lexer.GE:
			res, err = value.Ge(left, right)
		case lexer.IN:
			res, err = value.In(left, right)
		}
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
}

// evalAddExpr: + -.
func (i *Interpreter) evalAddExpr() *value.Object {
	left := i.evalMulExpr()
	for {
		op := i.tok().Kind
		if op != lexer.PLUS && op != lexer.MINUS {
			return left
		}
		i.next()
		right := i.evalMulExpr()
		var res *value.Object
		var err error
		if op == lexer.PLUS {
			res, err = value.Add(left, right)
		} else {
			res, err = value.Sub(left, right)
		}
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
}

// evalMulExpr: * / %.
func (i *Interpreter) evalMulExpr() *value.Object {
	left := i.evalUnary()
	for {
		op := i.tok().Kind
		if op != lexer.STAR && op != lexer.SLASH && op != lexer.PERCENT {
			return left
		}
		i.next()
		right := i.evalUnary()
		var res *value.Object
		var err error
		switch op {
		case lexer.STAR:
			res, err = value.Mul(left, right)
		case lexer.SLASH:
			res, err = value.Div(left, right)
		case lexer.PERCENT:
			res, err = value.Mod(left, right)
		}
		value.DecRef(left)
		value.DecRef(right)
		i.check(err)
		left = res
	}
}

// evalUnary: prefix - + !.
func (i *Interpreter) evalUnary() *value.Object {
	switch i.tok().Kind {
	case lexer.MINUS:
		i.next()
		v := i.evalUnary()
		res, err := value.Neg(v)
		value.DecRef(v)
		i.check(err)
		return res
	case lexer.PLUS:
		i.next()
		v := i.evalUnary()
		res, err := value.Pos(v)
		value.DecRef(v)
		i.check(err)
		return res
	case lexer.NOT:
		i.next()
		v := i.evalUnary()
		res, err := value.Not(v)
		value.DecRef(v)
		i.check(err)
		return res
	default:
		return i.evalPostfix()
	}
}

// evalPostfix: subscript s[i] or slice s[a:b], applied to a primary.
func (i *Interpreter) evalPostfix() *value.Object {
	v := i.evalPrimary()
	for i.tok().Kind == lexer.LBRACK {
		i.next()
		a := i.evalAssignExpr()
		if i.tok().Kind == lexer.COLON {
			i.next()
			b := i.evalAssignExpr()
			i.expect(lexer.RBRACK)

			ai, aErr := value.AsInt(a)
			value.DecRef(a)
			i.check(aErr)
			bi, bErr := value.AsInt(b)
			value.DecRef(b)
			i.check(bErr)

			res, err := value.Slice(v, value.RawInt(ai), value.RawInt(bi))
			value.DecRef(ai)
			value.DecRef(bi)
			value.DecRef(v)
			i.check(err)
			v = res
			continue
		}
		i.expect(lexer.RBRACK)
		ai, aErr := value.AsInt(a)
		value.DecRef(a)
		i.check(aErr)

		res, err := value.Item(v, value.RawInt(ai))
		value.DecRef(ai)
		value.DecRef(v)
		i.check(err)
		v = res
	}
	return v
}

// evalPrimary: int/float/char/str literal, parenthesized expression,
// list literal, identifier load, or call.
func (i *Interpreter) evalPrimary() *value.Object {
	t := i.tok()
	switch t.Kind {
	case lexer.INTLIT:
		i.next()
		n, err := strconv.ParseInt(t.Lexeme, 10, 64)
		if err != nil {
			i.fatal(diag.SyntaxError, "malformed int literal %q", t.Lexeme)
		}
		return value.NewInt(n)
	case lexer.FLOATLIT:
		i.next()
		f, err := strconv.ParseFloat(t.Lexeme, 64)
		if err != nil {
			i.fatal(diag.SyntaxError, "malformed float literal %q", t.Lexeme)
		}
		return value.NewFloat(f)
	case lexer.CHARLIT:
		i.next()
		return value.NewChar(t.Lexeme[0])
	case lexer.STRLIT:
		i.next()
		return value.NewString(t.Lexeme)
	case lexer.LPAR:
		i.next()
		v := i.evalCommaExpr()
		i.expect(lexer.RPAR)
		return v
	case lexer.LBRACK:
		return i.evalListLiteral()
	case lexer.IDENT:
		name := t.Lexeme
		i.next()
		if i.tok().Kind == lexer.LPAR {
			return i.evalCall(name)
		}
		id := i.scopes.Search(name)
		if id == nil {
			i.fatal(diag.NameError, "undeclared identifier %q", name)
		}
		value.IncRef(id.Value)
		return id.Value
	default:
		i.fatal(diag.SyntaxError, "unexpected token %s in expression", t.Kind)
		return value.None()
	}
}

func (i *Interpreter) evalListLiteral() *value.Object {
	i.expect(lexer.LBRACK)
	l := value.NewList()
	if i.tok().Kind == lexer.RBRACK {
		i.next()
		return l
	}
	for {
		v := i.evalAssignExpr()
		value.ListAppend(l, v)
		value.DecRef(v)
		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	i.expect(lexer.RBRACK)
	return l
}

// evalCall performs a call by jumping to the callee's registered
// position. The call-site RPAR is recognized but deliberately not
// consumed until after the jump back.
func (i *Interpreter) evalCall(name string) *value.Object {
	i.expect(lexer.LPAR)

	var args []*value.Object
	if i.tok().Kind != lexer.RPAR {
		for {
			v := i.evalAssignExpr()
			args = append(args, value.DeepCopy(v))
			value.DecRef(v)
			if i.tok().Kind == lexer.COMMA {
				i.next()
				continue
			}
			break
		}
	}
	if i.tok().Kind != lexer.RPAR {
		i.fatal(diag.SyntaxError, "expected ')' in call to %q", name)
	}

	calleeID := i.scopes.Search(name)
	if calleeID == nil || calleeID.Value == nil || calleeID.Value.Tag() != value.TagPosition {
		i.fatal(diag.NameError, "call to undefined function %q", name)
	}

	i.scopes.AppendLevel()
	returnTo := i.save()
	i.jump(calleeID.Value)
	// registerFunc saved the callee position at the '(' following the
	// function's identifier, so the formal list starts right here.
	i.expect(lexer.LPAR)

	consumed := 0
	for i.tok().Kind == lexer.IDENT {
		pname := i.tok().Lexeme
		i.next()
		if consumed >= len(args) {
			i.fatal(diag.SyntaxError, "too few arguments in call to %q", name)
		}
		fid, err := i.scopes.Add(pname)
		if err != nil {
			i.fatal(diag.NameError, "duplicate parameter %q in function %q", pname, name)
		}
		scope.Bind(fid, args[consumed])
		value.DecRef(args[consumed])
		consumed++
		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	for ; consumed < len(args); consumed++ {
		value.DecRef(args[consumed])
	}
	i.expect(lexer.RPAR)

	sig, rv := i.execBlock()
	i.expect(lexer.DEDENT)
	var result *value.Object
	if sig == sigReturn {
		result = rv
	} else {
		result = value.NewInt(0)
	}

	i.jump(returnTo)
	value.DecRef(returnTo)
	i.expect(lexer.RPAR)

	i.scopes.RemoveLevel()
	return result
}
