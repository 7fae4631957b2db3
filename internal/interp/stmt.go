package interp

import (
	"io"
	"strings"

	"indentlang/internal/diag"
	"indentlang/internal/lexer"
	"indentlang/internal/scope"
	"indentlang/internal/value"
)

var declTag = map[lexer.Kind]value.Tag{
	lexer.CHAR:  value.TagChar,
	lexer.INT:   value.TagInt,
	lexer.FLOAT: value.TagFloat,
	lexer.STR:   value.TagString,
	lexer.LIST:  value.TagList,
}

// execStmt dispatches on one token of lookahead.
func (i *Interpreter) execStmt() (signal, *value.Object) {
	switch i.tok().Kind {
	case lexer.CHAR, lexer.INT, lexer.FLOAT, lexer.STR, lexer.LIST:
		return i.execDecl()
	case lexer.DEF:
		return i.execDef()
	case lexer.IF:
		return i.execIf()
	case lexer.WHILE:
		return i.execWhile()
	case lexer.DO:
		return i.execDo()
	case lexer.FOR:
		return i.execFor()
	case lexer.PRINT:
		return i.execPrint()
	case lexer.INPUT:
		return i.execInput()
	case lexer.RETURN:
		return i.execReturn()
	case lexer.BREAK:
		i.next()
		i.expect(lexer.NEWLINE)
		return sigBreak, nil
	case lexer.CONTINUE:
		i.next()
		i.expect(lexer.NEWLINE)
		return sigContinue, nil
	case lexer.PASS:
		i.next()
		i.expect(lexer.NEWLINE)
		return sigNone, nil
	case lexer.IMPORT:
		return i.execImport()
	case lexer.ENDMARKER:
		return sigNone, nil
	default:
		v := i.evalCommaExpr()
		value.DecRef(v)
		i.expect(lexer.NEWLINE)
		return sigNone, nil
	}
}

// execBlock executes the statements of an indented block. It leaves
// the closing DEDENT unconsumed in every case; the caller consumes it.
func (i *Interpreter) execBlock() (signal, *value.Object) {
	i.expect(lexer.NEWLINE)
	i.expect(lexer.INDENT)
	for {
		sig, rv := i.execStmt()
		if sig != sigNone {
			if i.tok().Kind != lexer.DEDENT && i.tok().Kind != lexer.ENDMARKER {
				i.fastForwardToBlockDedent()
			}
			return sig, rv
		}
		if i.tok().Kind == lexer.DEDENT || i.tok().Kind == lexer.ENDMARKER {
			return sigNone, nil
		}
	}
}

// execDecl executes a declaration list:
// `type id (= expr)? (, id (= expr)?)*`.
func (i *Interpreter) execDecl() (signal, *value.Object) {
	tag := declTag[i.tok().Kind]
	i.next()
	for {
		if i.tok().Kind != lexer.IDENT {
			i.fatal(diag.SyntaxError, "expected identifier in declaration")
		}
		name := i.tok().Lexeme
		i.next()
		id, err := i.scopes.Add(name)
		if err != nil {
			i.fatal(diag.NameError, "identifier %q already declared in this scope", name)
		}
		if i.tok().Kind == lexer.ASSIGN {
			i.next()
			rhs := i.evalAssignExpr()
			coerced, cErr := value.ConvertTo(tag, rhs)
			value.DecRef(rhs)
			i.check(cErr)
			scope.Bind(id, coerced)
			value.DecRef(coerced)
		} else {
			def := value.Default(tag)
			scope.Bind(id, def)
			value.DecRef(def)
		}
		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	i.expect(lexer.NEWLINE)
	return sigNone, nil
}

// execDef handles a 'def' encountered at statement-execution time: a
// main-file function was already registered by prescan, so this just
// discards its body; a function reached for the first time via import
// is registered here instead.
func (i *Interpreter) execDef() (signal, *value.Object) {
	i.next()
	name := i.expectFuncName()
	if i.scopes.Search(name) == nil {
		i.registerFunc(name)
	}
	i.skipToNewline()
	i.skipBlock()
	return sigNone, nil
}

// execIf evaluates the condition, then runs one branch and skips the
// other.
func (i *Interpreter) execIf() (signal, *value.Object) {
	i.next()
	cond := i.evalCommaExpr()
	b, err := value.AsBool(cond)
	value.DecRef(cond)
	i.check(err)

	if b {
		sig, rv := i.execBlock()
		i.expect(lexer.DEDENT)
		if i.tok().Kind == lexer.ELSE {
			i.next()
			i.skipBlock()
		}
		return sig, rv
	}
	i.skipBlock()
	if i.tok().Kind == lexer.ELSE {
		i.next()
		sig, rv := i.execBlock()
		i.expect(lexer.DEDENT)
		return sig, rv
	}
	return sigNone, nil
}

// execWhile implements the while loop. Every false-condition exit,
// not only a loop that never ran, leaves the cursor right after the
// just-reevaluated condition, so skipBlock runs on every such exit,
// not conditionally.
func (i *Interpreter) execWhile() (signal, *value.Object) {
	i.next()
	condPos := i.save()
	for {
		cond := i.evalCommaExpr()
		b, err := value.AsBool(cond)
		value.DecRef(cond)
		i.check(err)
		if !b {
			value.DecRef(condPos)
			i.skipBlock()
			return sigNone, nil
		}
		sig, rv := i.execBlock()
		i.expect(lexer.DEDENT)
		switch sig {
		case sigBreak:
			value.DecRef(condPos)
			return sigNone, nil
		case sigReturn:
			value.DecRef(condPos)
			return sig, rv
		}
		i.jump(condPos)
	}
}

// execDo implements `do <block> while <cond>`, the condition checked
// after the block runs instead of before.
func (i *Interpreter) execDo() (signal, *value.Object) {
	i.next()
	blockPos := i.save()
	for {
		i.jump(blockPos)
		sig, rv := i.execBlock()
		i.expect(lexer.DEDENT)
		if sig == sigReturn {
			value.DecRef(blockPos)
			return sig, rv
		}
		i.expect(lexer.WHILE)
		cond := i.evalCommaExpr()
		b, err := value.AsBool(cond)
		value.DecRef(cond)
		i.check(err)
		i.expect(lexer.NEWLINE)
		if sig == sigBreak || !b {
			value.DecRef(blockPos)
			return sigNone, nil
		}
	}
}

// execFor implements `for id in seq`. Only the zero-iteration case
// needs an explicit skipBlock afterward; any iteration count >= 1
// leaves the cursor past the block already, via the last iteration's
// own DEDENT consumption.
func (i *Interpreter) execFor() (signal, *value.Object) {
	i.next()
	if i.tok().Kind != lexer.IDENT {
		i.fatal(diag.SyntaxError, "expected identifier after 'for'")
	}
	name := i.tok().Lexeme
	i.next()
	i.expect(lexer.IN)
	seq := i.evalCommaExpr()

	var length int
	switch seq.Tag() {
	case value.TagString:
		length = len(seq.Bytes())
	case value.TagList:
		length = value.ListLen(seq)
	default:
		value.DecRef(seq)
		i.fatal(diag.TypeError, "for loop requires a sequence, got %s", seq.Tag())
	}

	id := i.scopes.Search(name)
	if id == nil {
		var err error
		id, err = i.scopes.Add(name)
		i.check(err)
	}

	blockPos := i.save()
	for idx := 0; idx < length; idx++ {
		item, err := value.Item(seq, int64(idx))
		i.check(err)
		scope.Bind(id, item)
		value.DecRef(item)

		i.jump(blockPos)
		sig, rv := i.execBlock()
		i.expect(lexer.DEDENT)
		scope.Unbind(id)

		if sig == sigBreak {
			value.DecRef(blockPos)
			value.DecRef(seq)
			return sigNone, nil
		}
		if sig == sigReturn {
			value.DecRef(blockPos)
			value.DecRef(seq)
			return sig, rv
		}
	}
	value.DecRef(blockPos)
	if length == 0 {
		i.skipBlock()
	}
	value.DecRef(seq)
	return sigNone, nil
}

// execPrint evaluates comma-separated expressions, each printed with
// the value's own printer, space-separated, with a trailing newline.
func (i *Interpreter) execPrint() (signal, *value.Object) {
	i.next()
	first := true
	for {
		v := i.evalAssignExpr()
		if !first {
			io.WriteString(i.out, " ")
		}
		first = false
		value.Fprint(i.out, v)
		value.DecRef(v)
		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	io.WriteString(i.out, "\n")
	i.expect(lexer.NEWLINE)
	return sigNone, nil
}

// execInput reads one line per target: an optional string-literal
// prompt, then a line from standard input, parsed according to the
// target's declared type.
func (i *Interpreter) execInput() (signal, *value.Object) {
	i.next()
	for {
		if i.tok().Kind == lexer.STRLIT {
			io.WriteString(i.out, i.tok().Lexeme)
			i.next()
		}
		if i.tok().Kind != lexer.IDENT {
			i.fatal(diag.SyntaxError, "expected identifier in input target")
		}
		name := i.tok().Lexeme
		i.next()
		id := i.scopes.Search(name)
		if id == nil {
			i.fatal(diag.NameError, "undeclared identifier %q", name)
		}

		line, err := i.in.ReadString('\n')
		if err != nil && line == "" {
			i.fatal(diag.SystemError, "reading input: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")

		tag := value.TagString
		if id.Value != nil {
			tag = id.Value.Tag()
		}
		tmp := value.NewString(line)
		parsed, cErr := value.ConvertTo(tag, tmp)
		value.DecRef(tmp)
		i.check(cErr)
		scope.Bind(id, parsed)
		value.DecRef(parsed)

		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	i.expect(lexer.NEWLINE)
	return sigNone, nil
}

// execReturn evaluates the optional result. The non-local transfer
// back to the enclosing call is plain Go return-value propagation
// through execBlock/execStmt, not a stack-unwind: the innermost
// evalCall is the first frame that stops forwarding a sigReturn
// signal upward.
func (i *Interpreter) execReturn() (signal, *value.Object) {
	i.next()
	if i.tok().Kind == lexer.NEWLINE {
		i.next()
		return sigReturn, value.NewInt(0)
	}
	v := i.evalCommaExpr()
	i.expect(lexer.NEWLINE)
	return sigReturn, v
}

// execImport splices the listed files in at this statement: each
// file's top-level statements run to completion, in list order, as if
// its text replaced the import line. Paths are collected first,
// entirely off the importing file's own tokens, and the files pushed
// while the import
// line's NEWLINE is still current, since advancing past that NEWLINE
// before the push would scan (and lose) the statement that follows it.
func (i *Interpreter) execImport() (signal, *value.Object) {
	i.next()
	var paths []string
	for {
		v := i.evalAssignExpr()
		sv, err := value.AsStr(v)
		value.DecRef(v)
		i.check(err)
		paths = append(paths, string(sv.Bytes()))
		value.DecRef(sv)
		if i.tok().Kind == lexer.COMMA {
			i.next()
			continue
		}
		break
	}
	if i.tok().Kind != lexer.NEWLINE {
		i.fatal(diag.SyntaxError, "expected newline after import")
	}

	before := i.scan.Depth()
	if err := i.scan.ImportAll(paths); err != nil {
		i.fatal(diag.SystemError, "%v", err)
	}
	// The first next() begins tokenizing the spliced text; when the
	// last imported file runs out the reader pops back to this file
	// and the cursor lands on the statement after the import line.
	i.next()
	for i.scan.Depth() > before && i.tok().Kind != lexer.ENDMARKER {
		i.execStmt()
	}
	return sigNone, nil
}
