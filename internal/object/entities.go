package object

import "github.com/clayic/clayic/internal/ast"

// Procedure is a named, overloaded callable (spec §3). Overloads is filled
// in by the loader as top-level `Overload` declarations are installed;
// InvokeCache is the per-callable specialization table maintained by the
// resolver (spec §4.F) and left as an opaque pointer here to avoid an
// import cycle between object and invoke.
type Procedure struct {
	Name        string
	Overloads   []*ast.Overload
	Interface   *ast.Overload // optional interface overload (spec §4.F)
	InvokeCache any           // *invoke.InvokeSet table owner, set by the resolver
}

func (*Procedure) ObjKind() Kind    { return KindProcedure }
func (p *Procedure) String() string { return "procedure " + p.Name }

// MemoizeProcedure reports whether calls to this procedure should be
// memoized on their fully-static argument tuple (spec §4.E: "procedures
// whose source name ends with '?' are memoized").
func (p *Procedure) MemoizeProcedure() bool {
	return len(p.Name) > 0 && p.Name[len(p.Name)-1] == '?'
}

// RecordDecl / VariantDecl / EnumDecl / NewTypeDecl are the declaration
// objects a Record/Variant/Enum/NewType Type's Decl field points at
// (spec §3).
type RecordDecl struct {
	Decl *ast.RecordDecl
}

func (*RecordDecl) ObjKind() Kind    { return KindRecordDecl }
func (r *RecordDecl) String() string { return "record " + r.Decl.Name }

type VariantDecl struct {
	Decl *ast.VariantDecl
}

func (*VariantDecl) ObjKind() Kind    { return KindVariantDecl }
func (v *VariantDecl) String() string { return "variant " + v.Decl.Name }

type EnumDecl struct {
	Decl *ast.EnumDecl
}

func (*EnumDecl) ObjKind() Kind    { return KindEnumDecl }
func (e *EnumDecl) String() string { return "enum " + e.Decl.Name }

type NewTypeDecl struct {
	Decl *ast.NewTypeDecl
}

func (*NewTypeDecl) ObjKind() Kind    { return KindNewTypeDecl }
func (n *NewTypeDecl) String() string { return "newtype " + n.Decl.Name }

// EnumMember is a reference to one member of an enum declaration, the
// object an enum member name resolves to in scope (spec §3, §4.H).
type EnumMember struct {
	Decl  *EnumDecl
	Name  string
	Index int
}

func (*EnumMember) ObjKind() Kind    { return KindEnumMember }
func (e *EnumMember) String() string { return e.Decl.Decl.Name + "." + e.Name }

// GlobalVariable is a module-level mutable storage location. Init is its
// initializer expression as declared; Type stays nil until Init has been
// analyzed (spec §6's GVarInstance: "a resolved type and an initializer
// expression whose analysis has completed").
type GlobalVariable struct {
	Name string
	Type *Type // nil until analyzed
	Init ast.Expr
}

func (*GlobalVariable) ObjKind() Kind    { return KindGlobalVariable }
func (g *GlobalVariable) String() string { return "global " + g.Name }

// GlobalAlias is a (possibly parameterized) compile-time alias (spec §3).
type GlobalAlias struct {
	Decl *ast.GlobalAliasDecl
	Env  any // *objenv.Env, opaque here to avoid an import cycle
}

func (*GlobalAlias) ObjKind() Kind    { return KindGlobalAlias }
func (g *GlobalAlias) String() string { return "alias " + g.Decl.Name }

func (g *GlobalAlias) HasParams() bool {
	return len(g.Decl.Params) > 0 || g.Decl.VarParam != ""
}

// ExternalVariable / ExternalProcedure bind to foreign symbols (spec §6).
type ExternalVariable struct {
	Name string
	Type *Type
}

func (*ExternalVariable) ObjKind() Kind    { return KindExternalVariable }
func (e *ExternalVariable) String() string { return "external variable " + e.Name }

type ExternalProcedure struct {
	Decl *ast.ExternalProcedureDecl
	Type *Type // ExternalCodePointer type, filled in once analyzed
}

func (*ExternalProcedure) ObjKind() Kind    { return KindExternalProcedure }
func (e *ExternalProcedure) String() string { return "external procedure " + e.Decl.Name }

// Module is a namespace of globals with import edges and build attributes
// (spec §3, §6).
type Module struct {
	Name          string
	Globals       map[string]Object
	PublicGlobals map[string]bool
	Imports       []*ModuleImport
	Attributes    *ast.ModuleAttributes
}

func (*Module) ObjKind() Kind    { return KindModule }
func (m *Module) String() string { return "module " + m.Name }

// ModuleImport records one `import` edge, with the selective symbol list if
// any (empty = whole-module import).
type ModuleImport struct {
	Module  *Module
	Symbols []string // empty = import everything public
}

// Intrinsic is a reference to a backend intrinsic family (spec §3, §6): the
// core only carries the id and declared signature; the backend resolves it.
type Intrinsic struct {
	ID         string
	ArgTypes   []*Type
	ReturnType *Type
}

func (*Intrinsic) ObjKind() Kind    { return KindIntrinsic }
func (i *Intrinsic) String() string { return "intrinsic " + i.ID }
