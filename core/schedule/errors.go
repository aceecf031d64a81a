package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbatisse/calsat/core/encode"
)

// ErrEmptyProblem means there was nothing to schedule: no active meetings
// or no candidate slots inside the week. Callers treat it as a no-op
// result, not a failure.
var ErrEmptyProblem = errors.New("nothing to schedule")

// InfeasibleError reports that the hard constraint set cannot be satisfied.
// It is a first-class outcome, never silently relaxed. Conflicts carries
// the constraints the builder could prove unsatisfiable on its own; it is
// empty when only the solver could establish infeasibility.
type InfeasibleError struct {
	Conflicts []encode.Conflict
}

func (e *InfeasibleError) Error() string {
	if len(e.Conflicts) == 0 {
		return "no schedule satisfies the hard constraints"
	}
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return "no schedule satisfies the hard constraints: " + strings.Join(parts, "; ")
}

// InvariantError reports a decoded schedule violating an invariant the
// encoding was supposed to guarantee. It indicates an encoding defect and
// is always fatal.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("decoded schedule violates invariant: %s", e.Detail)
}
