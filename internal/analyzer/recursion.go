package analyzer

import "github.com/clayic/clayic/internal/clayerrors"

// RecursionPending is returned instead of a fatal error when a call's
// return type is blocked on an analysis that is already in progress further
// up the stack (spec §5: "a sentinel (error-location, context-stack) is
// captured"). It is not an error in the user-facing sense: a caller further
// up the stack may still resolve a base case and let the retry succeed.
// Only if it unwinds all the way to the top without any base case having
// been found does it become the fatal ANA001 "recursion without base case".
type RecursionPending struct {
	Callable string
	ArgsKey  string
	Frames   []clayerrors.ContextFrame
}

func (r *RecursionPending) Error() string {
	return "recursion pending: " + r.Callable + "(" + r.ArgsKey + ")"
}

// IsRecursionPending reports whether err is itself a RecursionPending
// sentinel; a wrapped sentinel is not unwrapped.
func IsRecursionPending(err error) (*RecursionPending, bool) {
	rp, ok := err.(*RecursionPending)
	return rp, ok
}

// RecursionWithoutBaseCase converts a RecursionPending sentinel that failed
// to unwind into a concrete result into the fatal ANA001 error, attaching
// the captured compile-context stack (spec §5).
func RecursionWithoutBaseCase(rp *RecursionPending) error {
	err := clayerrors.Newf(clayerrors.ANA001,
		"type propagation failed due to recursion without base case: %s(%s)", rp.Callable, rp.ArgsKey)
	for i := len(rp.Frames) - 1; i >= 0; i-- {
		err = err.WithFrame(rp.Frames[i].Callable, rp.Frames[i].ArgsKey)
	}
	return err
}
