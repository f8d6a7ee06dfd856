package ast

// PatternVar declares a pattern variable used by an overload's target/arg
// patterns and predicate (spec §4.C: "Pattern variables are declared per
// overload").
type PatternVar struct {
	Name    string
	IsMulti bool
}

// Tempness is the per-parameter policy from spec §4.F.
type Tempness int

const (
	TempDontCare Tempness = iota
	TempLValue
	TempRValue
	TempForward
)

// FormalArg is one formal parameter of an overload's code body.
type FormalArg struct {
	Name     string
	Type     Expr // pattern expression constraining the argument's type; nil = unconstrained
	Tempness Tempness
	VarArg   bool // true for the single trailing variadic parameter, if any
}

// Code is the body + signature of one overload (spec GLOSSARY: "Overload").
type Code struct {
	PatternVars []PatternVar
	FormalArgs  []FormalArg
	HasVarArg   bool
	Predicate   Expr // optional compile-time boolean predicate
	Body        Stmt
	CallByName  bool // interface-only/abstract overloads that are never specialized
	IsInline    bool
	IsDefault   bool // participates in final-overloads ambiguity exemption (spec §4.F)
}

// Overload is `(target pattern, arg patterns, predicate, body)` competing to
// define a callable's behavior (spec GLOSSARY).
type Overload struct {
	Target   Expr // expression identifying the callable this overload extends
	Code     *Code
	Location Pos
}

// RecordField is one named, typed field of a record declaration.
type RecordField struct {
	Name string
	Type Expr
}

// RecordDecl declares a record type constructor (spec §3 Type/Record).
type RecordDecl struct {
	Name      string
	Params    []string // type parameter names
	VarParam  string   // optional trailing variadic type parameter, "" if none
	Fields    []RecordField
	Overloads []*Overload
	Location  Pos
}

// VariantMember is one alternative of a variant declaration.
type VariantMember struct {
	Name string
}

// VariantDecl declares a tagged-union type constructor (spec §3 Type/Variant).
type VariantDecl struct {
	Name      string
	Params    []string
	VarParam  string
	Members   []VariantMember
	Overloads []*Overload
	Location  Pos
}

// EnumMember is one ordinal member of an enum declaration.
type EnumMember struct {
	Name  string
	Index int
}

// EnumDecl declares a closed set of named integer constants sharing a type
// (spec §3 Type/Enum; §4.H enum<->int primitives).
type EnumDecl struct {
	Name     string
	Members  []EnumMember
	Location Pos
}

// NewTypeDecl declares a distinct-at-compile-time, identical-at-runtime
// wrapper over another type (spec §3 Type/NewType; §4.H wrap/unwrap).
type NewTypeDecl struct {
	Name      string
	Underlying Expr
	Location   Pos
}

// CallingConv enumerates the external procedure calling conventions named in
// spec §6.
type CallingConv int

const (
	CCDefault CallingConv = iota
	CCStdCall
	CCFastCall
	CCThisCall
	CCLLVM
)

// Visibility enumerates the external procedure visibility attributes named
// in spec §6.
type Visibility int

const (
	VisDefault Visibility = iota
	VisDLLImport
	VisDLLExport
)

// ExternalProcedureDecl is an `external` declaration with an ABI contract the
// core must type but never invoke at compile time (spec §6, SPEC_FULL §4.G).
type ExternalProcedureDecl struct {
	Name       string
	ArgTypes   []Expr
	ReturnType Expr // nil = void
	VarArg     bool
	CC         CallingConv
	Visibility Visibility
	AsmLabel   string // optional
	Location   Pos
}

// ModuleAttributes are the freeform module-level build flags named in spec §6.
type ModuleAttributes struct {
	DefaultFloatType   Expr
	DefaultIntegerType Expr
	BuildFlags         []string
}

// GlobalAliasDecl is a zero-or-more-parameter compile-time alias (spec §3:
// "GlobalAlias ... with zero parameters has a value equal to the evaluation
// of its expression ... with parameters it behaves as a parameterized
// type-level function").
type GlobalAliasDecl struct {
	Name     string
	Params   []string
	VarParam string
	Expr     Expr
	Location Pos
}
