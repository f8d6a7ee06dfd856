package clayerrors

import (
	"fmt"
	"strings"

	"github.com/clayic/clayic/internal/ast"
)

// ContextFrame is one entry of the compile-context stack named in spec §7:
// "the ordered list of nested (callable, argument-key) pairs being analyzed".
type ContextFrame struct {
	Callable string
	ArgsKey  string
}

// CompileError is the single fatal-error type every component raises. All
// errors are fatal at the module level (spec §7) — there is no local
// recovery, only the Analyzer's recursion-sentinel rescheduling signal
// (which is explicitly not an error).
type CompileError struct {
	Code    string
	Message string
	Loc     *ast.Pos
	Stack   []ContextFrame
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Loc != nil {
		fmt.Fprintf(&b, " (at %s)", e.Loc.String())
	}
	for i := len(e.Stack) - 1; i >= 0; i-- {
		f := e.Stack[i]
		fmt.Fprintf(&b, "\n  while resolving %s%s", f.Callable, f.ArgsKey)
	}
	return b.String()
}

// New constructs a CompileError with no context stack attached; callers in
// the Analyzer/Resolver append frames via WithFrame as the error unwinds.
func New(code, message string) *CompileError {
	return &CompileError{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *CompileError {
	return New(code, fmt.Sprintf(format, args...))
}

// At attaches a source location.
func (e *CompileError) At(loc ast.Pos) *CompileError {
	l := loc
	e.Loc = &l
	return e
}

// WithFrame pushes one more (callable, argsKey) context frame, outermost
// last, matching how the stack unwinds through nested resolution calls.
func (e *CompileError) WithFrame(callable, argsKey string) *CompileError {
	e.Stack = append(e.Stack, ContextFrame{Callable: callable, ArgsKey: argsKey})
	return e
}
