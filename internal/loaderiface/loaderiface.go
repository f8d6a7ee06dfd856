// Package loaderiface provides the minimal module-loading contract named in
// spec §6: a concrete objenv.ModuleScope backed by plain name tables, and
// the Loader seam an external module-graph resolver would implement.
// Parsing source text into ast.Decls and resolving import graphs across
// files is out of scope (spec §1) — this package only gives
// internal/compiler something concrete to build a module's root Env on.
package loaderiface

import (
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// Module is a minimal objenv.ModuleScope: a flat private symbol table plus
// the subset of it re-exported publicly (spec §4.B's "module" parent,
// original_source/compiler/env.cpp's Module type). A real module system
// would additionally track imports and visibility per declaration; this
// module's semantic core only needs the two lookup operations objenv.Env
// falls through to.
type Module struct {
	Name    string
	private map[string]object.Object
	public  map[string]object.Object
}

// NewModule creates an empty module ready to be populated with Define calls
// (exported=true also publishes the name) as its declarations are registered
// (spec §4.B).
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		private: make(map[string]object.Object),
		public:  make(map[string]object.Object),
	}
}

// Define binds name within the module, visible to every Env rooted in it
// via LookupPrivate. exported additionally makes it visible to importers
// via LookupPublic.
func (m *Module) Define(name string, value object.Object, exported bool) error {
	if _, exists := m.private[name]; exists {
		return clayerrors.Newf(clayerrors.ENV001, "duplicate module-level name: %s", name)
	}
	m.private[name] = value
	if exported {
		m.public[name] = value
	}
	return nil
}

func (m *Module) LookupPrivate(name string) (object.Object, error) {
	return m.private[name], nil
}

func (m *Module) LookupPublic(name string) (object.Object, error) {
	return m.public[name], nil
}

// Loader is the seam an external module-graph resolver plugs into: given an
// import path it returns the already-loaded Module to import names from.
// internal/compiler never implements this itself (spec §6); a CLI/build
// tool wiring multiple Clay source files together would.
type Loader interface {
	LoadModule(importPath string) (*Module, error)
}

// SingleModuleLoader is the trivial Loader a one-file program or a REPL
// session uses: every import path resolves to the same root module, mainly
// useful for exercising internal/compiler without a real module graph.
type SingleModuleLoader struct {
	Root *Module
}

func (l SingleModuleLoader) LoadModule(importPath string) (*Module, error) {
	if l.Root == nil {
		return nil, clayerrors.Newf(clayerrors.ENV002, "no module loaded for import %q", importPath)
	}
	return l.Root, nil
}
