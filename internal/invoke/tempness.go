package invoke

import "github.com/clayic/clayic/internal/ast"

// ValueTempness is the actual lvalue/rvalue tag of one argument at a call
// site, the counterpart to FormalArg.Tempness's per-parameter policy (spec
// §4.F's tempness model).
type ValueTempness int

const (
	TempLValue ValueTempness = iota
	TempRValue
)

// tempnessMatches reports whether an argument's actual tempness satisfies a
// formal parameter's tempness policy (matchinvoke.cpp:tempnessMatches):
// DontCare and Forward accept either; LValue/RValue require an exact match.
func tempnessMatches(actual ValueTempness, policy ast.Tempness) bool {
	switch policy {
	case ast.TempDontCare, ast.TempForward:
		return true
	case ast.TempLValue:
		return actual == TempLValue
	case ast.TempRValue:
		return actual == TempRValue
	default:
		return false
	}
}

// setForwardedRValue fills in ms's resolved forwarded-rvalue flag vectors
// (spec §4.F, §6, testable property 8) once matchTempness has already
// confirmed argTempness is policy-compatible: a flag is true iff its
// parameter's policy is TempForward and the actual argument was an rvalue.
func setForwardedRValue(ms *MatchSuccess, argTempness []ValueTempness) {
	ms.FixedForwardedRValue = make([]bool, len(ms.FixedTempness))
	for i, policy := range ms.FixedTempness {
		ms.FixedForwardedRValue[i] = policy == ast.TempForward && argTempness[i] == TempRValue
	}
	if ms.VarArgName != "" {
		ms.VarArgForwardedRValue = make([]bool, len(ms.VarArgTypes))
		for i := range ms.VarArgForwardedRValue {
			ms.VarArgForwardedRValue[i] = ms.VarArgTempness == ast.TempForward && argTempness[len(ms.FixedTempness)+i] == TempRValue
		}
	}
}

// matchTempness checks every fixed and variadic argument's actual tempness
// against a MatchSuccess's recorded policies, the second half of dispatch
// beyond pattern unification (spec §4.F testable property 8).
func matchTempness(ms *MatchSuccess, argTempness []ValueTempness) bool {
	for i, policy := range ms.FixedTempness {
		if !tempnessMatches(argTempness[i], policy) {
			return false
		}
	}
	if ms.VarArgName != "" {
		for i := len(ms.FixedTempness); i < len(argTempness); i++ {
			if !tempnessMatches(argTempness[i], ms.VarArgTempness) {
				return false
			}
		}
	}
	return true
}
