// Package clayerrors provides centralized, AI-friendly error-code
// definitions for the semantic core, following the same taxonomy style the
// teacher project uses for its own compiler phases (spec §7).
package clayerrors

// Object/Type Model (spec §4.A).
const (
	OBJ001 = "OBJ001" // untypeable object
)

// Environment (spec §4.B).
const (
	ENV001 = "ENV001" // duplicate name
	ENV002 = "ENV002" // undefined name
	ENV003 = "ENV003" // ambiguous imported symbol
)

// Pattern Kernel (spec §4.C).
const (
	PAT001 = "PAT001" // unbound pattern variable
	PAT002 = "PAT002" // multi-valued pattern used in single-valued context
	PAT003 = "PAT003" // non-static value used in pattern context
	PAT004 = "PAT004" // non-matching alias arity
)

// Analyzer (spec §4.D, §5).
const (
	ANA001 = "ANA001" // recursion without base case
	ANA002 = "ANA002" // mismatching result types with dispatch
	ANA003 = "ANA003" // cannot take address of temporary
	ANA004 = "ANA004" // by-ref/by-value mismatch across returns
	ANA005 = "ANA005" // unsupported expression form or missing collaborator
	ANA006 = "ANA006" // binding value does not match its type annotation
	ANA007 = "ANA007" // inconsistent return shape across return statements
)

// Evaluator (spec §4.E).
const (
	EVA001 = "EVA001" // integer overflow
	EVA002 = "EVA002" // division by zero
	EVA003 = "EVA003" // invalid shift
	EVA004 = "EVA004" // bitcast size/alignment violation
	EVA005 = "EVA005" // compile-time FFI/atomic/exception rejected
	EVA006 = "EVA006" // compile-time evaluation stack exhausted
	EVA007 = "EVA007" // unsupported primitive or expression form
)

// Overload Resolver / Invocation Cache (spec §4.F).
const (
	INV001 = "INV001" // tried N candidates, none matched
	INV002 = "INV002" // ambiguous match (final-overloads mode)
	INV003 = "INV003" // predicate evaluation loop
	INV004 = "INV004" // interface mismatch
)

// Loader (contract-only collaborator, spec §6).
const (
	LDR001 = "LDR001" // module not found
	LDR002 = "LDR002" // circular imports
	LDR003 = "LDR003" // ambiguous imported symbol (loader-side)
)
