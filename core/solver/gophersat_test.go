package solver

import (
	"errors"
	"testing"
)

func TestSolveMinimizesViolatedWeight(t *testing.T) {
	inst := Instance{
		Hard: []Clause{{Pos("x"), Pos("y")}},
		Soft: []SoftClause{
			{Clause: Clause{Neg("x")}, Weight: 2},
			{Clause: Clause{Neg("y")}, Weight: 1},
		},
	}
	res, err := New().Solve(inst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	// Setting only y violates the cheaper soft clause.
	if res.Cost != 1 {
		t.Fatalf("expected cost 1 got %d", res.Cost)
	}
	if res.Model["x"] || !res.Model["y"] {
		t.Fatalf("expected x=false y=true got %v", res.Model)
	}
}

func TestSolveHardOnly(t *testing.T) {
	inst := Instance{Hard: []Clause{{Pos("a")}, {Neg("a"), Pos("b")}}}
	res, err := New().Solve(inst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Cost != 0 {
		t.Fatalf("expected cost 0 got %d", res.Cost)
	}
	if !res.Model["a"] || !res.Model["b"] {
		t.Fatalf("expected a and b true got %v", res.Model)
	}
}

func TestSolveUnsat(t *testing.T) {
	inst := Instance{Hard: []Clause{{Pos("a")}, {Neg("a")}}}
	_, err := New().Solve(inst)
	if !errors.Is(err, ErrUnsat) {
		t.Fatalf("expected ErrUnsat got %v", err)
	}
}

func TestSolveEmptyInstance(t *testing.T) {
	res, err := New().Solve(Instance{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.Model) != 0 || res.Cost != 0 {
		t.Fatalf("expected empty result got %+v", res)
	}
}

func TestSolveEngineOverride(t *testing.T) {
	old := solve
	solve = func(Instance) (map[string]bool, int) { return nil, 0 }
	defer func() { solve = old }()

	_, err := New().Solve(Instance{Hard: []Clause{{Pos("a")}}})
	if !errors.Is(err, ErrUnsat) {
		t.Fatalf("expected ErrUnsat got %v", err)
	}
}
