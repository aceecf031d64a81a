package solver

import "github.com/crillab/gophersat/maxsat"

// Gophersat backs the Solver interface with the gophersat MaxSAT engine.
type Gophersat struct{}

// New returns a gophersat-backed solver.
func New() Gophersat { return Gophersat{} }

// solve points to the function used to run the engine. It can be overridden
// in tests to simulate solver behaviour.
var solve = gophersatSolve

func gophersatSolve(inst Instance) (map[string]bool, int) {
	constrs := make([]maxsat.Constr, 0, len(inst.Hard)+len(inst.Soft))
	for _, c := range inst.Hard {
		constrs = append(constrs, maxsat.HardClause(toLits(c)...))
	}
	for _, sc := range inst.Soft {
		constrs = append(constrs, maxsat.WeightedClause(toLits(sc.Clause), sc.Weight))
	}
	return maxsat.New(constrs...).Solve()
}

func toLits(c Clause) []maxsat.Lit {
	out := make([]maxsat.Lit, len(c))
	for i, l := range c {
		if l.Negated {
			out[i] = maxsat.Not(l.Var)
		} else {
			out[i] = maxsat.Var(l.Var)
		}
	}
	return out
}

// Solve runs the engine once. A nil model from the engine means the hard
// clause set is unsatisfiable.
func (Gophersat) Solve(inst Instance) (Result, error) {
	if len(inst.Hard) == 0 && len(inst.Soft) == 0 {
		return Result{Model: map[string]bool{}}, nil
	}
	m, cost := solve(inst)
	if m == nil {
		return Result{}, ErrUnsat
	}
	return Result{Model: m, Cost: cost}, nil
}
