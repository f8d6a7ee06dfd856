package clayerrors

import (
	"fmt"
	"strings"
)

// OverloadFailure records why one candidate overload did not match, so the
// diagnostic can show every attempted overload (spec §4.F: "Match-failure
// reporting").
type OverloadFailure struct {
	Overload string // short source-level description of the overload
	Reason   string
}

// FormatMatchFailures renders the bundled "tried N candidates, none matched"
// report (spec §7: "Match failures across an overload set are bundled and
// printed together").
func FormatMatchFailures(callable string, failures []OverloadFailure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tried %d candidates, none matched for %s", len(failures), callable)
	for i, f := range failures {
		fmt.Fprintf(&b, "\n  [%d] %s: %s", i+1, f.Overload, f.Reason)
	}
	return b.String()
}
