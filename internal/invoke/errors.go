package invoke

import (
	"fmt"
	"strings"

	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// MatchFailureError aggregates one MatchResult per overload that was tried
// and did not produce a usable match, so a caller sees every candidate's
// rejection reason rather than just the last one (spec §4.F, §7: "tried N
// candidates, none matched").
type MatchFailureError struct {
	Callable object.Object
	Failures []MatchResult
}

func (e *MatchFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no matching overload out of %d candidate(s)", clayerrors.INV001, len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  ")
		b.WriteString(describeFailure(f))
	}
	return b.String()
}

func describeFailure(f MatchResult) string {
	loc := f.Overload().Location
	switch v := f.(type) {
	case *MatchCallableMismatch:
		return fmt.Sprintf("%s: callable did not match target pattern", loc)
	case *MatchArityMismatch:
		return fmt.Sprintf("%s: expected %d argument(s), got %d", loc, v.Expected, v.Got)
	case *MatchArgumentMismatch:
		return fmt.Sprintf("%s: argument %d (%s) did not match its pattern", loc, v.Index, v.Type)
	case *MatchVarArgMismatch:
		return fmt.Sprintf("%s: variadic arguments did not match", loc)
	case *MatchPredicateFalse:
		return fmt.Sprintf("%s: predicate was false", loc)
	default:
		return fmt.Sprintf("%s: did not match", loc)
	}
}

// InterfaceMismatchError reports that a concrete overload matched but the
// callable's declared interface overload did not accept the same arguments
// (spec §4.F: "every concrete overload must also match a declared interface
// overload").
type InterfaceMismatchError struct {
	Callable  object.Object
	Interface MatchResult
}

func (e *InterfaceMismatchError) Error() string {
	return fmt.Sprintf("%s: %s does not satisfy its interface overload (%s)",
		clayerrors.INV004, e.Callable, describeFailure(e.Interface))
}
