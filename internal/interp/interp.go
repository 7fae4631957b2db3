// Package interp implements the fused recursive-descent parser and
// evaluator: a statement dispatcher and expression precedence climb
// driven directly off the token stream, with no separate AST stage.
// Loops, calls, and imports are implemented with the reader's
// save()/jump() position checkpoints rather than cached syntax trees,
// so the statement and expression methods below both parse and
// evaluate in the same pass.
package interp

import (
	"bufio"
	"io"

	"indentlang/internal/diag"
	"indentlang/internal/lexer"
	"indentlang/internal/registry"
	"indentlang/internal/scope"
	"indentlang/internal/source"
	"indentlang/internal/value"
)

// signal is the control-transfer value every statement-executing
// method returns in place of global break-pending/continue-pending
// flags and a saved-return-continuation stack: Go's own call stack
// gives each nested call its own return scope for free, so no explicit
// continuation stack is needed alongside it.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// Interpreter bundles every piece of process state (scanner cursor,
// reader stack, scope stack, and the optional live-object registry)
// behind one receiver instead of as package globals.
type Interpreter struct {
	rdr    *source.Reader
	scan   *lexer.Scanner
	scopes *scope.Stack
	reg    *registry.Registry
	out    io.Writer
	in     *bufio.Reader
	debug  bool
}

// New constructs an interpreter ready to Run. reg may be nil if the
// live-object registry is not wanted; out/in are the print/input
// streams.
func New(rdr *source.Reader, out io.Writer, in io.Reader, reg *registry.Registry, debug bool) *Interpreter {
	return &Interpreter{
		rdr:    rdr,
		scan:   lexer.NewScanner(rdr),
		scopes: scope.NewStack(),
		reg:    reg,
		out:    out,
		in:     bufio.NewReader(in),
		debug:  debug,
	}
}

// Run executes the entry sequence: pre-scan, reset, then
// statement-loop to ENDMARKER.
func (i *Interpreter) Run() {
	i.prescan()
	i.scan.Reset()
	for i.tok().Kind != lexer.ENDMARKER {
		sig, rv := i.execStmt()
		if sig == sigReturn {
			value.DecRef(rv)
		}
	}
	// Releasing the module frame drops the last owning reference to
	// every global and every function-entry position, so the registry
	// reports only genuine leaks.
	i.scopes.RemoveLevel()
	if i.debug && i.reg != nil {
		if err := i.reg.Dump("object.dsv"); err != nil {
			i.fatal(diag.SystemError, "writing object.dsv: %v", err)
		}
	}
}

func (i *Interpreter) tok() lexer.Token { return i.scan.Token() }
func (i *Interpreter) next()            { i.scan.Next() }
func (i *Interpreter) save() *value.Object { return i.scan.Save() }
func (i *Interpreter) jump(pos *value.Object) { i.scan.Jump(pos) }

func (i *Interpreter) loc() (string, int, int) {
	t := i.tok()
	return t.File, t.Line, t.Col
}

func (i *Interpreter) fatal(kind diag.Kind, format string, args ...interface{}) {
	f, l, c := i.loc()
	diag.Fatal(kind, f, l, c, format, args...)
}

// check raises a located diagnostic from a value-package operator
// failure, translating its OpError kind, or SystemError for anything
// else. There is nothing else in practice; every fallible value
// operation returns *value.OpError.
func (i *Interpreter) check(err error) {
	if err == nil {
		return
	}
	if oe, ok := err.(*value.OpError); ok {
		i.fatal(oe.Kind, "%s", oe.Msg)
		return
	}
	i.fatal(diag.SystemError, "%v", err)
}

// expect requires the current token be kind k, raising SyntaxError
// otherwise, and advances past it.
func (i *Interpreter) expect(k lexer.Kind) lexer.Token {
	t := i.tok()
	if t.Kind != k {
		i.fatal(diag.SyntaxError, "expected %s, got %s %q", k, t.Kind, t.Lexeme)
	}
	i.next()
	return t
}
