package diag

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a compile error. Lowering aborts on the first
// error of any kind; emitting wrong assembly is worse than failing.
type Kind string

const (
	SyntaxError            Kind = "syntax error"
	ArgumentLimitExceeded  Kind = "argument limit exceeded"
	AllocationExhausted    Kind = "register allocation exhausted"
	NoEnclosingLoop        Kind = "no enclosing loop"
	CyclicStdlibDependency Kind = "cyclic stdlib dependency"
	UnresolvedIdentifier   Kind = "unresolved identifier"
	InvalidAddressOf       Kind = "invalid address-of"
)

// Error is a compile error pinned to a source line and the construct being
// lowered when it was detected.
type Error struct {
	Kind      Kind
	Line      int
	Construct string
	Msg       string
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Construct != "":
		return fmt.Sprintf("line %d: %s: %s: %s", e.Line, e.Construct, e.Kind, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Msg)
	case e.Construct != "":
		return fmt.Sprintf("%s: %s: %s", e.Construct, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errorf builds a compile error of the given kind.
func Errorf(kind Kind, line int, construct, format string, args ...any) *Error {
	return &Error{
		Kind:      kind,
		Line:      line,
		Construct: construct,
		Msg:       fmt.Sprintf(format, args...),
	}
}

// At pins an error produced by a lower-level component (which does not know
// source positions) to a line and construct. Non-compile errors pass through
// unchanged.
func At(err error, line int, construct string) error {
	var ce *Error
	if !errors.As(err, &ce) {
		return err
	}
	out := *ce
	if out.Line == 0 {
		out.Line = line
	}
	if out.Construct == "" {
		out.Construct = construct
	}
	return &out
}

// KindOf extracts the error kind, or "" when err is not a compile error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
