// Package solver defines the narrow weighted-MaxSAT contract the encoder
// targets: hard clauses that must all hold, weighted soft clauses whose
// violated weight is minimized, and an exact optimum or a hard-infeasibility
// signal back. The concrete search engine sits behind the Solver interface.
package solver

import "errors"

// Lit is a literal over a named boolean variable.
type Lit struct {
	Var     string
	Negated bool
}

// Pos returns the positive literal for v.
func Pos(v string) Lit { return Lit{Var: v} }

// Neg returns the negated literal for v.
func Neg(v string) Lit { return Lit{Var: v, Negated: true} }

// Clause is a disjunction of literals.
type Clause []Lit

// SoftClause is a clause whose violation costs Weight. Weight must be
// positive; zero-weight preferences are dropped before they get here.
type SoftClause struct {
	Clause Clause
	Weight int
}

// Instance is a weighted partial MaxSAT problem.
type Instance struct {
	Hard []Clause
	Soft []SoftClause
}

// Result is an optimal assignment together with the total weight of the
// soft clauses it violates.
type Result struct {
	Model map[string]bool
	Cost  int
}

// ErrUnsat is returned when the hard clauses alone are unsatisfiable.
var ErrUnsat = errors.New("hard clauses unsatisfiable")

// Solver finds an assignment satisfying every hard clause that minimizes
// the total weight of violated soft clauses. Implementations are exact, not
// approximate, and deterministic for a fixed instance cost.
type Solver interface {
	Solve(inst Instance) (Result, error)
}
