// Package ast defines the AST node contracts the semantic core consumes.
// Parsing itself is out of scope (spec §1) — these types are the boundary
// the (external) lexer/parser hands nodes across.
package ast

import "fmt"

// Pos identifies a source location for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// NodeID is a stable identity for an expression node, used by the Analyzer's
// per-node memoization cache.
type NodeID uint64

// Expr is the base interface for all expression forms (spec §4.D contract table).
type Expr interface {
	ID() NodeID
	Position() Pos
	exprNode()
}

type exprBase struct {
	NodeID   NodeID
	Location Pos
}

func (e exprBase) ID() NodeID    { return e.NodeID }
func (e exprBase) Position() Pos { return e.Location }
func (e exprBase) exprNode()     {}

// NewExprBase constructs node identity + location; the (out-of-scope) parser
// is expected to assign monotonically increasing IDs.
func NewExprBase(id NodeID, pos Pos) exprBase {
	return exprBase{NodeID: id, Location: pos}
}

// BoolLit, IntLit, FloatLit, StringLit — literal forms.
type BoolLit struct {
	exprBase
	Value bool
}

type IntLit struct {
	exprBase
	Value  int64
	Bits   int
	Signed bool
}

type FloatLit struct {
	exprBase
	Value float64
	Bits  int
}

type StringLit struct {
	exprBase
	Value string
}

// NameRef is a reference to a name resolved through the environment.
type NameRef struct {
	exprBase
	Name string
}

// Call is a function/procedure/type-constructor call.
type Call struct {
	exprBase
	Callee Expr
	Args   []Expr
}

// FieldRef is `e.n` — either a static module field lookup or sugar for a
// field-access operator call (spec §4.D).
type FieldRef struct {
	exprBase
	Expr  Expr
	Field string
}

// Indexing is `e[args...]` — used for parameterized types/aliases and for
// pattern-struct construction in pattern expressions.
type Indexing struct {
	exprBase
	Expr Expr
	Args []Expr
}

// Tuple is `(a, b, c)`.
type Tuple struct {
	exprBase
	Args []Expr
}

// Paren is a parenthesized group of expressions, used in multi-pattern
// evaluation to flatten nested multi-values (spec §4.C).
type Paren struct {
	exprBase
	Args []Expr
}

// BinLogicOp distinguishes And/Or (spec §4.D: short-circuit deferred to codegen).
type BinLogicOp int

const (
	LogicAnd BinLogicOp = iota
	LogicOr
)

type BinLogic struct {
	exprBase
	Op    BinLogicOp
	Left  Expr
	Right Expr
}

// VariadicOpCode enumerates the variadic unary/n-ary operators the Analyzer
// special-cases (spec §4.D names ADDRESS_OF explicitly).
type VariadicOpCode int

const (
	OpAddressOf VariadicOpCode = iota
	OpDereference
	OpNot
)

type VariadicOp struct {
	exprBase
	Op   VariadicOpCode
	Args []Expr
}

// DispatchExpr marks `e` as a dispatch position on the enclosing call
// (multiple-dispatch argument selection, spec §4.D).
type DispatchExpr struct {
	exprBase
	Expr Expr
}

// Unpack splices a multi-valued expression into an argument list or pattern
// list (spec §4.D, §4.C, §9).
type Unpack struct {
	exprBase
	Expr Expr
}

// EvalExpr evaluates string arguments to AST via the Evaluator, then
// analyzes the result (spec §4.D) — the language's compile-time "eval".
type EvalExpr struct {
	exprBase
	Args []Expr
}

// ForeignExpr wraps an expression with the environment it must be resolved
// against once it is spliced into another scope — e.g. an alias argument
// substituted into the caller's body keeps resolving against the caller's
// environment, not the callee's (spec §4.B). Env is an opaque *objenv.Env,
// held as `any` here since objenv itself depends on this package.
type ForeignExpr struct {
	exprBase
	Env   any
	Inner Expr
}

func (*BoolLit) exprNode()      {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*NameRef) exprNode()      {}
func (*Call) exprNode()         {}
func (*FieldRef) exprNode()     {}
func (*Indexing) exprNode()     {}
func (*Tuple) exprNode()        {}
func (*Paren) exprNode()        {}
func (*BinLogic) exprNode()     {}
func (*VariadicOp) exprNode()   {}
func (*DispatchExpr) exprNode() {}
func (*Unpack) exprNode()       {}
func (*EvalExpr) exprNode()     {}
func (*ForeignExpr) exprNode()  {}
