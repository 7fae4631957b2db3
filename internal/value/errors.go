package value

import (
	"fmt"

	"indentlang/internal/diag"
)

// OpError is what every operator function in this package returns on
// failure. The interpreter attaches source location to it and raises
// diag.Fatal; the value package itself has no notion of position.
type OpError struct {
	Kind diag.Kind
	Msg  string
}

func (e *OpError) Error() string { return e.Msg }

func errf(kind diag.Kind, format string, args ...interface{}) *OpError {
	return &OpError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func typeErr(format string, args ...interface{}) *OpError {
	return errf(diag.TypeError, format, args...)
}

func valueErr(format string, args ...interface{}) *OpError {
	return errf(diag.ValueError, format, args...)
}

func indexErr(format string, args ...interface{}) *OpError {
	return errf(diag.IndexError, format, args...)
}

func zeroDivErr(format string, args ...interface{}) *OpError {
	return errf(diag.ZeroDivisionError, format, args...)
}
